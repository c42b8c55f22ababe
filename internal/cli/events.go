package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const eventsPath = "/api/v1/leaderboard/events"

// errStopStream ends readEvents early without reporting a failure
var errStopStream = errors.New("stop stream")

func newEventsCmd() *cobra.Command {
	var jsonOutput bool
	var count int
	var clientName string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Watch the live leaderboard",
		Long: `Follow the leaderboard event stream the venue displays use.

Text output prints one summary line per event:
  connected            the stream is open
  leaderboard-updated  the current leading team, sent on connect and after every stored result
  results-reset        how many results an admin deleted

Use --json to print each raw event as a JSON line. Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return streamEvents(ctx, cmd.OutOrStdout(), clientName, jsonOutput, count)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print raw events as JSON lines")
	cmd.Flags().IntVar(&count, "count", 0, "Stop after this many events (0 follows until interrupted)")
	cmd.Flags().StringVar(&clientName, "client", "eventctl", "Display name reported to the server")

	return cmd
}

// SSEEvent is one event read from the leaderboard stream
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(ctx context.Context, w io.Writer, clientName string, jsonOutput bool, count int) error {
	streamURL := strings.TrimSuffix(cfg.ServerURL, "/") + eventsPath + "?client=" + url.QueryEscape(clientName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// The default client has no timeout, which a stream needs
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	seen := 0
	err = readEvents(resp.Body, func(evt SSEEvent) error {
		evt.Time = time.Now()
		if err := printEvent(w, evt, jsonOutput); err != nil {
			return err
		}
		seen++
		if count > 0 && seen >= count {
			return errStopStream
		}
		return nil
	})
	switch {
	case errors.Is(err, errStopStream):
		return nil
	case err != nil && ctx.Err() != nil:
		// Interrupted
		return nil
	case err != nil:
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		_, _ = fmt.Fprintln(w, "Stream closed by server")
	}
	return nil
}

// readEvents parses an SSE body and calls fn for each complete named event.
// Comment lines such as keepalives are ignored.
func readEvents(r io.Reader, fn func(SSEEvent) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var name string
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if name != "" {
				if err := fn(SSEEvent{Event: name, Data: strings.Join(data, "\n")}); err != nil {
					return err
				}
			}
			name, data = "", nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	return scanner.Err()
}

func printEvent(w io.Writer, evt SSEEvent, jsonOutput bool) error {
	if jsonOutput {
		data, err := json.Marshal(evt)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", evt.Time.Format("15:04:05"), evt.Event, summarizeEvent(evt))
	return err
}

// summarizeEvent renders one line describing what an event means for the board
func summarizeEvent(evt SSEEvent) string {
	switch evt.Event {
	case "connected":
		return "stream open"
	case "results-reset":
		var reset ResetResult
		if err := json.Unmarshal([]byte(evt.Data), &reset); err != nil {
			return evt.Data
		}
		return fmt.Sprintf("%d results deleted", reset.Deleted)
	case "leaderboard-updated":
		var board struct {
			TeamTotals []TeamTotal `json:"team_totals"`
		}
		if err := json.Unmarshal([]byte(evt.Data), &board); err != nil {
			return evt.Data
		}
		if len(board.TeamTotals) == 0 {
			return "no results yet"
		}
		lead := board.TeamTotals[0]
		return fmt.Sprintf("%s leads with %d games, total %d (%d teams ranked)",
			lead.Team, lead.GamesPlayed, lead.TotalScore, len(board.TeamTotals))
	default:
		return evt.Data
	}
}
