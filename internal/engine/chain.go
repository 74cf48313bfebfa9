package engine

import (
	"context"
)

// FirstAvailable 依次尝试各个 Checker，返回第一个实际运行了的结果
type FirstAvailable []Checker

func (f FirstAvailable) Check(ctx context.Context, path string) (Result, error) {
	var last Result
	for _, c := range f {
		res, err := c.Check(ctx, path)
		if err != nil {
			return res, err
		}
		if res.Ran {
			return res, nil
		}
		last = res
	}
	return last, nil
}

// New 按名字创建 Checker：binary、library、library-full（解码后再 box.New 一次）、
// auto（先 binary 后 library）、none
func New(kind, binary string) (Checker, error) {
	switch kind {
	case "", "auto":
		return FirstAvailable{NewBinaryChecker(binary), &LibraryChecker{}}, nil
	case "binary":
		return NewBinaryChecker(binary), nil
	case "library":
		return &LibraryChecker{}, nil
	case "library-full":
		return &LibraryChecker{Instantiate: true}, nil
	case "none":
		return nil, nil
	default:
		return nil, &UnknownKindError{Kind: kind}
	}
}

type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "unknown engine check kind: " + e.Kind
}
