package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/roster/internal/printer"
	"github.com/dyluth/roster/internal/view"
	"github.com/dyluth/roster/pkg/docstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Reconnect backoff for the change feed.
const (
	feedRetryMin = time.Second
	feedRetryMax = 30 * time.Second
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	var weekSpec string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live view that redraws on every change",
		Long: `Show the team, the week grid and notes, and redraw whenever anyone
on the team changes something. Runs until interrupted (Ctrl+C).

In local-only mode changes made by other roster commands on this machine
are picked up instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weekID, err := parseWeek(weekSpec, g)
			if err != nil {
				return err
			}

			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			// Wait must finish before follow starts issuing remote calls.
			if err := s.load(weekID); err != nil {
				return err
			}
			if err := renderDashboard(s, weekID); err != nil {
				return err
			}

			changes := make(chan struct{}, 1)
			h := s.orch.Subscribe("", func(docstore.Key) {
				select {
				case changes <- struct{}{}:
				default:
				}
			})
			defer s.orch.Unsubscribe(h)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
			defer signal.Stop(sigCh)

			ctx, cancel := context.WithCancel(cmd.Context())
			done := make(chan struct{})
			go func() {
				defer close(done)
				s.follow(ctx)
			}()
			defer func() {
				cancel()
				<-done
			}()

			for {
				select {
				case <-sigCh:
					return nil
				case <-ctx.Done():
					return nil
				case <-changes:
					if err := renderDashboard(s, weekID); err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().StringVarP(&weekSpec, "week", "w", "", "Week to show: a date, 'next', 'last' or an offset like +1")
	return cmd
}

// follow keeps the change feed running until ctx ends, resubscribing with
// backoff whenever it drops.
func (s *session) follow(ctx context.Context) {
	var backoff feedBackoff
	for ctx.Err() == nil {
		err := s.orch.Run(ctx)
		delay := backoff.after(err)
		if err != nil {
			s.logger.Warn("change feed unavailable, retrying", zap.Error(err), zap.Duration("backoff", delay))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// feedBackoff doubles the resubscribe delay on consecutive failures, up to
// feedRetryMax. A feed that was up and dropped starts over at feedRetryMin.
type feedBackoff struct {
	next time.Duration
}

// after returns the delay to wait after a Run that ended with err.
func (b *feedBackoff) after(err error) time.Duration {
	if err == nil || b.next == 0 {
		b.next = feedRetryMin
	}
	if err == nil {
		return feedRetryMin
	}
	delay := b.next
	b.next = min(delay*2, feedRetryMax)
	return delay
}

func renderDashboard(s *session, weekID string) error {
	printer.Printf("── %s · updated %s ──\n\n", view.TeamTitle(s.orch.TeamName()), time.Now().Format("15:04:05"))
	if err := renderWeek(s, weekID); err != nil {
		return err
	}
	printer.Println()
	view.RenderNotes(printer.Stdout(), s.orch.Participants(), s.orch.Note)
	printer.Println()
	return nil
}
