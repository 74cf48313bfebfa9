package version

import "fmt"

var (
	Tag    string = "dev"
	Commit string = "none"
	Date   string = "unknown"
)

type Info struct{}

func (i *Info) String() string {
	return fmt.Sprintf("sing-deploy %s (%s) built at %s", Tag, Commit, Date)
}
