package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"servicekit/internal/admin"
	"servicekit/internal/config"
	"servicekit/internal/lifecycle"
	"servicekit/internal/logger"
)

// cli carries what every subcommand needs.
type cli struct {
	conn   admin.Connector
	waiter *admin.Waiter
	out    io.Writer
	green  *color.Color
	red    *color.Color

	timeout    uint32
	logLevel   string
	configPath string

	// service holds defaults from --config; empty without it.
	service config.ServiceConfig
}

func newRootCmd(conn admin.Connector, waiter *admin.Waiter, out io.Writer) *cobra.Command {
	c := &cli{
		conn:   conn,
		waiter: waiter,
		out:    out,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
	}
	if f, ok := out.(*os.File); ok && isTerminal(f) && !color.NoColor {
		// Translates escapes on consoles without VT processing.
		c.out = colorable.NewColorable(f)
		c.green.EnableColor()
		c.red.EnableColor()
	} else {
		c.green.DisableColor()
		c.red.DisableColor()
	}

	root := &cobra.Command{
		Use:           "svcinstaller",
		Short:         "Install and control a Windows service",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.Config{Level: c.logLevel, Console: true}); err != nil {
				return err
			}
			return c.loadDefaults(cmd)
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.out)
	root.PersistentFlags().Uint32Var(&c.timeout, "timeout", admin.DefaultWaitSeconds, "seconds to wait for each state transition")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error, disabled)")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "service config file supplying defaults for --name, --timeout and create")

	root.AddCommand(
		c.createCmd(),
		c.deleteCmd(),
		c.queryCmd(),
		c.startCmd(),
		c.stopCmd(),
	)
	return root
}

func (c *cli) createCmd() *cobra.Command {
	var opts admin.CreateOptions
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := c.serviceName(opts.Name)
			if err != nil {
				return err
			}
			opts.Name = name
			bin, err := admin.ResolveBinaryPath(opts.BinaryPath)
			if err != nil {
				return c.report(err)
			}
			opts.BinaryPath = bin
			// The config only describes its own service.
			if c.service.Name == name {
				if opts.DisplayName == "" {
					opts.DisplayName = c.service.DisplayName
				}
				if opts.Description == "" {
					opts.Description = c.service.Description
				}
				if !cmd.Flags().Changed("auto") {
					opts.AutoStart = c.service.AutoStart
				}
			}
			if opts.DisplayName == "" {
				opts.DisplayName = opts.Name
			}
			if err := admin.Create(c.conn, opts); err != nil {
				return c.report(err)
			}
			c.ok("Service %s created (%s)", opts.Name, bin)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "service name (defaults to the --config service)")
	cmd.Flags().StringVar(&opts.DisplayName, "disp", "", "display name (defaults to the service name)")
	cmd.Flags().StringVar(&opts.Description, "desc", "", "service description")
	cmd.Flags().BoolVar(&opts.AutoStart, "auto", false, "start automatically at boot")
	cmd.Flags().StringVar(&opts.BinaryPath, "bin", "", "path to the service executable")
	cmd.MarkFlagRequired("bin")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Stop the service if needed and delete it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := c.open(&name, admin.ServiceQueryStatus|admin.ServiceStop|admin.ServiceDelete)
			if err != nil {
				return err
			}
			defer sc.Close()

			err = admin.Uninstall(cmd.Context(), sc, c.waiter, c.timeout, c.tick)
			c.endTicks()
			if err != nil {
				return c.report(err)
			}
			c.ok("Service %s deleted", name)
			return nil
		},
	}
	nameFlag(cmd, &name)
	return cmd
}

func (c *cli) queryCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the service's current status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := c.open(&name, admin.ServiceQueryStatus)
			if err != nil {
				return err
			}
			defer sc.Close()

			st, err := sc.QueryStatus()
			if err != nil {
				return c.report(err)
			}
			c.printStatus(name, st)
			return nil
		},
	}
	nameFlag(cmd, &name)
	return cmd
}

func (c *cli) startCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the service and wait until it is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := c.open(&name, admin.ServiceQueryStatus|admin.ServiceStart)
			if err != nil {
				return err
			}
			defer sc.Close()

			err = admin.StartAndWait(cmd.Context(), sc, c.waiter, c.timeout, c.tick)
			c.endTicks()
			if err != nil {
				return c.report(err)
			}
			c.ok("Service %s is running", name)
			return nil
		},
	}
	nameFlag(cmd, &name)
	return cmd
}

func (c *cli) stopCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the service and wait until it has stopped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := c.open(&name, admin.ServiceQueryStatus|admin.ServiceStop)
			if err != nil {
				return err
			}
			defer sc.Close()

			err = admin.StopAndWait(cmd.Context(), sc, c.waiter, c.timeout, c.tick)
			c.endTicks()
			if err != nil {
				return c.report(err)
			}
			c.ok("Service %s stopped", name)
			return nil
		},
	}
	nameFlag(cmd, &name)
	return cmd
}

func nameFlag(cmd *cobra.Command, name *string) {
	cmd.Flags().StringVar(name, "name", "", "service name (defaults to the --config service)")
}

// loadDefaults reads --config, if given. Explicit flags still win.
func (c *cli) loadDefaults(cmd *cobra.Command) error {
	if c.configPath == "" {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return c.report(err)
	}
	c.service = cfg.Service
	if !cmd.Flags().Changed("timeout") {
		c.timeout = cfg.Admin.WaitTimeoutSeconds
	}
	return nil
}

func (c *cli) serviceName(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if c.service.Name != "" {
		return c.service.Name, nil
	}
	return "", c.report(errors.New("--name is required without --config"))
}

// open resolves *name against the config defaults and opens the service.
func (c *cli) open(name *string, access admin.ServiceAccess) (*admin.Context, error) {
	resolved, err := c.serviceName(*name)
	if err != nil {
		return nil, err
	}
	*name = resolved
	sc, err := admin.Open(c.conn, resolved, admin.ManagerConnect, access)
	if err != nil {
		return nil, c.report(err)
	}
	return sc, nil
}

func (c *cli) tick() {
	fmt.Fprint(c.out, ".")
}

func (c *cli) endTicks() {
	fmt.Fprintln(c.out)
}

func (c *cli) printStatus(name string, st lifecycle.Status) {
	fmt.Fprintf(c.out, "%s: %s\n", name, st.State)
	fmt.Fprintf(c.out, "  accepts:    %s\n", st.Accepts)
	if st.ProcessID != 0 {
		fmt.Fprintf(c.out, "  pid:        %d\n", st.ProcessID)
	}
	if st.ExitCode != 0 {
		fmt.Fprintf(c.out, "  exit code:  %d\n", st.ExitCode)
	}
	if st.State.IsPending() {
		fmt.Fprintf(c.out, "  checkpoint: %d (wait hint %s)\n", st.CheckPoint, st.WaitHint)
	}
}

func (c *cli) ok(format string, args ...interface{}) {
	c.green.Fprintln(c.out, fmt.Sprintf(format, args...))
}

// reportedError marks an error that has already been printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// report prints err and returns it marked as printed; the exit code is still
// derived from the wrapped error.
func (c *cli) report(err error) error {
	msg := err.Error()
	if admin.KindOf(err) == admin.Timeout {
		msg += " (the service is still transitioning, try again)"
	}
	c.red.Fprintln(c.out, "Error: "+msg)
	return &reportedError{err: err}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
