package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/viva/internal/auth"
	"github.com/sadopc/viva/internal/export"
	"github.com/sadopc/viva/internal/invite"
	"github.com/sadopc/viva/internal/timeline"
	"github.com/sadopc/viva/internal/tui"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the viva version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "viva", Version)
		},
	}
}

func newShowCmd(e *env) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <invite-id>",
		Short: "Print an invitation as guests see it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inv, err := e.svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			rs, err := e.svc.Responses(ctx, inv.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(inv)
			}
			printInvitation(out, inv, e.cfg.DefaultWindow())
			printSummary(out, invite.Summarize(inv.Invitees, rs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored invitation as JSON")
	return cmd
}

func newRSVPCmd(e *env) *cobra.Command {
	var r invite.Response
	cmd := &cobra.Command{
		Use:   "rsvp <invite-id>",
		Short: "Record a guest's response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := e.svc.Respond(ctx, args[0], r); err != nil {
				return err
			}
			rs, err := e.svc.Responses(ctx, args[0])
			if err != nil {
				return err
			}
			inv, err := e.svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Thanks %s, your RSVP for %s is saved.\n", strings.TrimSpace(r.Guest), inv.EventName)
			printSummary(out, invite.Summarize(inv.Invitees, rs))
			return nil
		},
	}
	cmd.Flags().StringVar(&r.Guest, "guest", "", "guest name (required)")
	cmd.Flags().StringVar(&r.Attending, "attending", invite.AttendingYes, "yes, no or maybe")
	cmd.Flags().IntVar(&r.Bringing, "bringing", 0, "number of extra people")
	_ = cmd.MarkFlagRequired("guest")
	return cmd
}

func newExportCmd(e *env) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <invite-id>",
		Short: "Write an invitation's schedule as CSV, JSON or iCalendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := e.svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			format = strings.ToLower(format)
			if out == "" {
				out = "viva-" + inv.ID + "." + format
			}
			def := e.cfg.DefaultWindow()
			switch format {
			case "csv":
				err = export.ToCSV(inv, def, out)
			case "json":
				err = export.ToJSON(inv, def, out)
			case "ics":
				err = export.ToICS(inv, def, time.Local, out)
			default:
				return fmt.Errorf("unknown format %q (want csv, json or ics)", format)
			}
			if err != nil {
				return err
			}
			e.log.Info("exported", "id", inv.ID, "format", format, "path", out)
			fmt.Fprintln(cmd.OutOrStdout(), "Exported to", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv, json or ics")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default: viva-<id>.<format>)")
	return cmd
}

func newHostCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "host <invite-id>",
		Short: "Watch RSVPs for an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.svc.Get(cmd.Context(), args[0]); err != nil {
				return err
			}
			return e.runTUI(tui.NewApp(e.deps(args[0])))
		},
	}
}

func newResetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the invitation being drafted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entries, err := e.store.ListState(ctx, "viva:")
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(entries))
			for _, entry := range entries {
				keys = append(keys, entry.Key)
			}
			if err := e.store.DeleteKeys(ctx, keys...); err != nil {
				return err
			}
			e.log.Info("draft reset", "keys", len(keys))
			fmt.Fprintf(cmd.OutOrStdout(), "Draft cleared. (%d saved values removed)\n", len(keys))
			return nil
		},
	}
}

func newEditCmd(e *env) *cobra.Command {
	var user, password string
	var name, location, message, start, end string
	cmd := &cobra.Command{
		Use:   "edit <invite-id>",
		Short: "Change the details of an invitation you host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if password == "" {
				password = os.Getenv(EnvPassword)
			}
			if _, err := e.auth.SignIn(ctx, user, password); err != nil {
				return errors.New(auth.Message(err))
			}
			defer e.auth.SignOut()

			var f invite.Fields
			flags := cmd.Flags()
			set := func(flag string, v *string) *string {
				if flags.Changed(flag) {
					return v
				}
				return nil
			}
			f.EventName = set("name", &name)
			f.Location = set("location", &location)
			f.Message = set("message", &message)
			for _, c := range []struct {
				flag string
				v    *string
				dst  **string
			}{{"start", &start, &f.StartTime}, {"end", &end, &f.EndTime}} {
				if !flags.Changed(c.flag) {
					continue
				}
				if !timeline.ValidClock(*c.v) {
					return fmt.Errorf("--%s: %q is not a HH:MM time", c.flag, *c.v)
				}
				*c.dst = c.v
			}

			if err := e.svc.UpdateFields(ctx, args[0], f); err != nil {
				return err
			}
			inv, err := e.svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			e.log.Info("invitation edited", "id", inv.ID, "host", user)
			printInvitation(cmd.OutOrStdout(), inv, e.cfg.DefaultWindow())
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "host username (required)")
	cmd.Flags().StringVar(&password, "password", "", "host password (default: $"+EnvPassword+")")
	cmd.Flags().StringVar(&name, "name", "", "new event name")
	cmd.Flags().StringVar(&location, "location", "", "new location")
	cmd.Flags().StringVar(&message, "message", "", "new message for guests")
	cmd.Flags().StringVar(&start, "start", "", "new start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "new end time (HH:MM)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printInvitation(w io.Writer, inv invite.Invitation, def timeline.ClockPair) {
	win := inv.Window(def)
	fmt.Fprintf(w, "%s\n", inv.EventName)
	fmt.Fprintln(w, strings.Repeat("=", max(len(inv.EventName), 8)))
	if len(inv.EventType) > 0 {
		fmt.Fprintf(w, "%-10s %s\n", "Occasion", strings.Join(inv.EventType, ", "))
	}
	if len(inv.Theme) > 0 {
		fmt.Fprintf(w, "%-10s %s\n", "Theme", strings.Join(inv.Theme, ", "))
	}
	if inv.Date != "" {
		fmt.Fprintf(w, "%-10s %s\n", "Date", inv.Date)
	}
	fmt.Fprintf(w, "%-10s %s\n", "Time", win)
	if inv.Location != "" {
		fmt.Fprintf(w, "%-10s %s\n", "Where", inv.Location)
	}
	if inv.HostUsername != "" {
		fmt.Fprintf(w, "%-10s %s\n", "Host", inv.HostUsername)
	}
	if inv.CustomMessage != "" {
		fmt.Fprintf(w, "\n%s\n", inv.CustomMessage)
	}

	acts := inv.Schedule(win)
	if len(acts) > 0 {
		fmt.Fprintln(w, "\nSchedule")
		for _, a := range acts {
			fmt.Fprintf(w, "  %8s  %s\n", timeline.FormatClock(a.Time), a.Name)
		}
	}
}

func printSummary(w io.Writer, s invite.Summary) {
	fmt.Fprintf(w, "\nRSVPs: %d going, %d maybe, %d declined, %d waiting (headcount %d)\n",
		s.Going, s.Maybe, s.Declined, s.NoResponse, s.Headcount)
}
