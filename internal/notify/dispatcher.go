package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"taskboard/internal/service"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Sender delivers one embed to one chat channel.
type Sender interface {
	Send(ctx context.Context, channelID string, embed Embed) error
}

type Report struct {
	Channels  int `json:"channels"`
	Delivered int `json:"delivered"`
	Tasks     int `json:"tasks"`
	Skipped   int `json:"skipped"`
}

// Dispatcher posts reminders to the channel of each task's portfolio.
type Dispatcher struct {
	sender Sender
	limit  int
	log    *slog.Logger
}

func NewDispatcher(sender Sender, limit int, log *slog.Logger) *Dispatcher {
	if limit <= 0 {
		limit = 4
	}
	return &Dispatcher{sender: sender, limit: limit, log: log}
}

type channelBatch struct {
	channelID string
	entries   []service.ReminderEntry
}

// groupByChannel keeps the order in which channels first appear. Entries
// without a channel are counted and dropped.
func groupByChannel(entries []service.ReminderEntry) ([]channelBatch, int) {
	var batches []channelBatch
	index := map[string]int{}
	skipped := 0
	for _, e := range entries {
		if e.PortfolioChannel == nil || *e.PortfolioChannel == "" {
			skipped++
			continue
		}
		ch := *e.PortfolioChannel
		i, ok := index[ch]
		if !ok {
			i = len(batches)
			index[ch] = i
			batches = append(batches, channelBatch{channelID: ch})
		}
		batches[i].entries = append(batches[i].entries, e)
	}
	return batches, skipped
}

// Dispatch sends one message per channel. A failing channel does not stop the
// others; all failures are returned together.
func (d *Dispatcher) Dispatch(ctx context.Context, entries []service.ReminderEntry) (Report, error) {
	batches, skipped := groupByChannel(entries)
	report := Report{Channels: len(batches), Skipped: skipped}
	if skipped > 0 {
		d.log.Warn("tasks without a portfolio channel were not announced", "count", skipped)
	}

	var (
		mu       sync.Mutex
		failures *multierror.Error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.limit)
	for _, b := range batches {
		b := b
		g.Go(func() error {
			err := d.sender.Send(gctx, b.channelID, ReminderEmbed(b.entries))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = multierror.Append(failures, fmt.Errorf("channel %s: %w", b.channelID, err))
				d.log.Error("reminder not delivered", "channel", b.channelID, "error", err)
				return nil
			}
			report.Delivered++
			report.Tasks += len(b.entries)
			d.log.Info("reminder delivered", "channel", b.channelID, "tasks", len(b.entries))
			return nil
		})
	}
	_ = g.Wait()

	return report, failures.ErrorOrNil()
}
