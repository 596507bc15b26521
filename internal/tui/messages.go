package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Godzilla108108/agritech/internal/chat"
	"github.com/Godzilla108108/agritech/internal/dashboard"
	"github.com/Godzilla108108/agritech/internal/prices"
	"github.com/Godzilla108108/agritech/internal/weather"
)

// Fetch results carry the sequence number of the request that produced
// them so the owning page can drop superseded replies.

type pricesLoadedMsg struct {
	seq     uint64
	records []prices.Price
	err     error
}

type weatherLoadedMsg struct {
	seq      uint64
	location string
	snap     weather.Snapshot
	err      error
}

type chatReplyMsg struct {
	reply chat.Message
	err   error
}

type advisoriesMsg struct {
	result dashboard.FetchResult
}

type dashboardTickMsg time.Time

type navigateMsg struct {
	route Route
}

type errMsg struct {
	err error
}

func navigate(r Route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: r} }
}
