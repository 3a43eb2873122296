package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"CountrySwipe/internal/service/eventstream"
	"CountrySwipe/internal/tui"
	xhttp "CountrySwipe/pkg/http"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "swipe server base url")
	refresh := flag.Duration("refresh", 2*time.Second, "fallback refresh interval")
	flag.Parse()

	if err := run(*server, *refresh); err != nil {
		fmt.Fprintf(os.Stderr, "swipe: %v\n", err)
		os.Exit(1)
	}
}

func run(server string, refresh time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	base := strings.TrimRight(server, "/")
	client := tui.NewClient(xhttp.NewClient(
		xhttp.WithBaseURL(base),
		xhttp.WithTimeout(15*time.Second),
	))

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws"
	stream := eventstream.New(wsURL, eventstream.WithReconnectDelay(refresh))
	dialCtx, cancelDial := context.WithTimeout(ctx, 5*time.Second)
	if err := stream.Connect(dialCtx); err != nil {
		log.Printf("event stream unavailable, polling only: %v", err)
	}
	cancelDial()

	model := tui.New(client,
		tui.WithStream(stream),
		tui.WithRefresh(refresh),
		tui.WithContext(ctx),
	)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
