package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/views/chat"
)

var _ tea.Model = (*App)(nil)

// App is the root bubbletea model: a single chat view bound to one
// document, plus the quit key and the header lookup.
type App struct {
	ports *Ports
	ctx   context.Context
	keys  *keymap.KeyMap
	view  *chat.View
	docID string

	// sized is set by the first WindowSizeMsg. Until then the view has no
	// dimensions to lay out against.
	sized bool
}

func NewApp(ports *Ports, documentID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	if documentID == "" {
		return nil, fmt.Errorf("tui: %w", ErrMissingDocumentID)
	}

	keys := keymap.DefaultKeyMap()
	return &App{
		ports: ports,
		ctx:   context.Background(),
		keys:  keys,
		view:  chat.NewView(styles.DefaultStyles(), keys, ports.Chat, documentID),
		docID: documentID,
	}, nil
}

// WithContext makes ctx the parent of every question the view sends.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.view.WithContext(ctx)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("skillbot - "+a.docID),
		a.view.Init(),
		a.loadDocument(),
	)
}

// loadDocument looks up the person's name for the header.
func (a *App) loadDocument() tea.Cmd {
	docs, ctx, id := a.ports.Document, a.ctx, a.docID
	return func() tea.Msg {
		if docs == nil {
			return nil
		}
		doc, err := docs.Get(ctx, id)
		return messages.DocumentLoaded{Document: doc, Err: err}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil
	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keys.Quit) {
			return a, tea.Quit
		}
	case messages.DocumentLoaded:
		// Without a record the header keeps the id.
		if msg.Err == nil && msg.Document != nil {
			a.view.SetTitle(msg.Document.Name)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.view, cmd = a.view.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if !a.sized {
		return "Loading..."
	}
	return a.view.View()
}

// ChatView exposes the chat view to tests.
func (a *App) ChatView() *chat.View {
	return a.view
}

func (a *App) SetDimensions(width, height int) {
	a.sized = true
	a.view.SetDimensions(width, height)
}
