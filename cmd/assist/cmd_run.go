package main

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/voicekit/assist-core/assist"
	"github.com/voicekit/assist-core/assist/credentials"
	"github.com/voicekit/assist-core/assist/events"
	"github.com/voicekit/assist-core/assist/eventstream"
	"github.com/voicekit/assist-core/assist/native"
)

var (
	flagListen          string
	flagRefreshInterval time.Duration
)

func init() {
	runCmd.Flags().StringVar(&flagListen, "listen", "",
		"serve the event stream over websocket on this address (e.g. :8484)")
	runCmd.Flags().DurationVar(&flagRefreshInterval, "token-refresh-interval", 30*time.Minute,
		"how often to push a fresh access token to the engine")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the assistant and log its events",
	Long: `Run starts one engine session and logs every event it emits until
interrupted. The access token is read from ASSIST_ACCESS_TOKEN.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	session, seq, cleanup, err := startSession(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	var stream *eventstream.Server
	if flagListen != "" {
		stream = eventstream.NewServer()
		defer stream.Close()
		serveEventStream(cmd.Context(), stream, flagListen)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		slog.Info("shutting down", "signal", sig)
		// Ends the event sequence below by closing the queue.
		if err := session.Close(); err != nil {
			slog.Error("session teardown reported errors", "error", err)
		}
	}()

	for event := range seq {
		slog.Info("assistant event", "kind", event.Kind().String(), "payload", event.Payload())
		if stream != nil {
			stream.Publish(event)
		}
	}

	return nil
}

// startSession wires discovery, binding, credentials, and session start. The
// returned cleanup closes the session and is safe to call after a
// signal-driven close.
func startSession(ctx context.Context) (session *assist.Session, seq iter.Seq[events.Event], cleanup func(), err error) {
	path, err := native.DefaultLibraryPath(flagLibDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("locate engine library: %w", err)
	}

	lib, err := native.Load(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load engine library: %w", err)
	}
	slog.Info("engine library loaded", "path", path)

	opts := []assist.SessionOption{}
	if token := os.Getenv("ASSIST_ACCESS_TOKEN"); token != "" {
		opts = append(opts,
			assist.WithAccessToken(token),
			assist.WithCredentialRefresher(credentials.NewRefresher(
				oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
				credentials.WithInterval(flagRefreshInterval),
			)),
		)
	} else {
		slog.Warn("no access token configured (ASSIST_ACCESS_TOKEN is empty)")
	}

	session, err = assist.New(lib, opts...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create session: %w", err)
	}

	seq, err = session.Start(ctx)
	if err != nil {
		session.Close()
		return nil, nil, nil, fmt.Errorf("start session: %w", err)
	}
	slog.Info("session started", "session_id", session.ID())

	return session, seq, func() {
		if err := session.Close(); err != nil {
			slog.Error("session teardown reported errors", "error", err)
		}
	}, nil
}

func serveEventStream(ctx context.Context, stream *eventstream.Server, addr string) {
	httpServer := &http.Server{Addr: addr, Handler: stream.Handler()}
	go func() {
		slog.Info("event stream listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("event stream server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()
}
