package cli

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/config"
	"github.com/kyson-dev/sing-deploy/internal/document"
	"github.com/kyson-dev/sing-deploy/internal/engine"
	"github.com/kyson-dev/sing-deploy/internal/env"
	"github.com/kyson-dev/sing-deploy/internal/logger"
	"github.com/kyson-dev/sing-deploy/internal/pkg/netutil"
	"github.com/kyson-dev/sing-deploy/internal/settings"
	"github.com/kyson-dev/sing-deploy/internal/validate"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	configPath  string
	outputPath  string
	engineKind  string
	binary      string
	fillSecrets bool
	probePorts  bool
	dryRun      bool
}

func newGenerateCommand() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Compile the deployment file into a sing-box config",
		Long: `Compile the deployment file into a sing-box config.

The document goes through the validation pipeline (syntax, schema, ports,
tls, deprecated) and an optional engine check before it replaces the
output file. A rejected document never touches the existing config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Deployment file (default: <home>/deployment.yaml)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output config (default: <home>/config.json, or the file's output key)")
	cmd.Flags().StringVar(&opts.engineKind, "engine", "auto", "Engine check: auto, binary, library, library-full, none")
	cmd.Flags().StringVar(&opts.binary, "binary", "", "sing-box binary for engine check (default: sing-box)")
	cmd.Flags().BoolVar(&opts.fillSecrets, "fill-secrets", false, "Generate missing credentials and save them back")
	cmd.Flags().BoolVar(&opts.probePorts, "probe-ports", false, "Fail if a listen port is already in use on this host")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the config instead of writing it")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts generateOptions) error {
	paths := env.Get()
	if opts.configPath == "" {
		opts.configPath = paths.ConfigFile
	}

	// 先在不含环境变量的文件副本上补全凭据，再带着环境变量重新加载
	if opts.fillSecrets {
		filled, err := settings.FillSecretsInFile(opts.configPath)
		if err != nil {
			return err
		}
		if len(filled) > 0 {
			logger.Info("Secrets generated", "fields", filled)
		}
	}

	f, err := settings.Load(opts.configPath)
	if err != nil {
		return err
	}

	d, err := f.ToDeployment()
	if err != nil {
		return err
	}

	binary := opts.binary
	if binary == "" {
		binary = f.EngineBinary
	}
	checker, err := engine.New(opts.engineKind, binary)
	if err != nil {
		return err
	}
	pipeline := validate.New(validate.WithChecker(checker))

	if opts.dryRun {
		doc, err := config.Generate(d)
		if err != nil {
			return err
		}
		report, err := pipeline.RunDocument(doc)
		if err != nil {
			return err
		}
		printIssues(cmd, report.Issues)
		if err := report.Err(); err != nil {
			return err
		}
		data, err := document.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if opts.probePorts {
		doc, err := config.Generate(d)
		if err != nil {
			return err
		}
		if err := probeInbounds(doc); err != nil {
			return err
		}
	}

	output := opts.outputPath
	if output == "" {
		output = f.Output
	}
	if output == "" {
		output = paths.OutputFile
	}

	doc, err := config.BuildConfig(output, d, pipeline.Validator(cmd.Context()))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d inbounds)\n", output, len(doc.Inbounds))
	return nil
}

// probeInbounds hysteria2 走 udp，其余入站走 tcp
func probeInbounds(doc *document.Document) error {
	for _, in := range doc.Inbounds {
		network := "tcp"
		if in.Type == document.TypeHysteria2 {
			network = "udp"
		}
		if err := netutil.CheckAvailable("", int(in.ListenPort()), network); err != nil {
			return fmt.Errorf("inbound %s: %w", in.Tag, err)
		}
		logger.Debug("Port available", "tag", in.Tag, "port", in.ListenPort(), "network", network)
	}
	return nil
}

func printIssues(cmd *cobra.Command, issues []validate.Issue) {
	for _, i := range issues {
		fmt.Fprintln(cmd.ErrOrStderr(), i.String())
	}
}
