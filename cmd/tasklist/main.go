package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tasklistd/internal/rpcclient"
	"tasklistd/internal/tui"
)

func main() {
	serverURL := flag.String("server", "http://127.0.0.1:8990", "base URL of the tasklistd daemon")
	flag.Parse()

	client := rpcclient.New(*serverURL)
	backend := tui.ClientBackend{Client: client}

	program := tea.NewProgram(tui.NewModel(backend), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tasklist failed: %v\n", err)
		os.Exit(1)
	}
}
