package main

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/tasker/internal/client"
	"github.com/phrazzld/tasker/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// quietLevel is above every level the client and controller log at.
const quietLevel = slog.LevelError + 4

// session is what every subcommand works with: one controller over one
// State, plus where to render it.
type session struct {
	ctrl *ui.Controller
	out  io.Writer
	loc  *time.Location
}

func (s *session) render() error {
	return ui.Render(s.out, *s.ctrl.State(), s.loc)
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	var sess *session

	rootCmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage tasks on a tasker server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := quietLevel
			if v.GetBool("verbose") {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

			c, err := client.New(v.GetString("api"), client.WithLogger(logger))
			if err != nil {
				return err
			}

			sess = &session{
				ctrl: ui.NewController(&ui.State{}, c, ui.WriterNotifier{W: errOut}, logger),
				out:  out,
				loc:  time.Local,
			}
			return nil
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().String("api", client.DefaultBaseURL, "API base URL")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log requests to stderr")
	_ = v.BindPFlag("api", rootCmd.PersistentFlags().Lookup("api"))
	_ = v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = v.BindEnv("api", "TASKER_API_BASE", "API_BASE")
	v.SetDefault("api", client.DefaultBaseURL)

	get := func() *session { return sess }
	rootCmd.AddCommand(listCmd(get))
	rootCmd.AddCommand(addCmd(get))
	rootCmd.AddCommand(deleteCmd(get))
	rootCmd.AddCommand(shellCmd(get))

	return rootCmd
}

func listCmd(get func() *session) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show all tasks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := get()
			s.ctrl.Load(cmd.Context())
			return s.render()
		},
	}
}

func addCmd(get func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := get()
			s.ctrl.Load(cmd.Context())
			s.ctrl.Add(cmd.Context(), strings.Join(args, " "))
			return s.render()
		},
	}
}

func deleteCmd(get func() *session) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task by id",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := get()
			s.ctrl.Load(cmd.Context())
			s.ctrl.Delete(cmd.Context(), args[0])
			return s.render()
		},
	}
}

func shellCmd(get func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session keeping one task list across commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), cmd.InOrStdin(), get())
		},
	}
}
