package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"blcsview/internal/codec"
	"blcsview/internal/dropwatch"
	"blcsview/internal/ingest"
	"blcsview/internal/logging"
	"blcsview/internal/pane"
	"blcsview/internal/ui/textutil"
)

const (
	// DefaultTickInterval paces repaint in reactive mode.
	DefaultTickInterval = 250 * time.Millisecond
	// statusTTL is how long the last warning stays on the status line.
	statusTTL = 8 * time.Second
)

// frameMsg is delivered to overlays directly at the end of every frame.
type frameMsg struct{}

// Options wires the app to the rest of the program.
type Options struct {
	Context  context.Context
	Pipeline *ingest.Pipeline
	Recorder *logging.Recorder
	Logger   *slog.Logger
	// Reactive repaints every TickInterval. Otherwise the app wakes up only
	// on input and when FeedReady fires.
	Reactive     bool
	TickInterval time.Duration
	FeedReady    <-chan struct{}
	// CloudLoad starts a background cloud fetch; nil when not configured.
	CloudLoad func()
	// Initial files are dropped when the program starts.
	Initial []ingest.DroppedFile
	Layout  pane.LayoutKind
	// ExportDir and ExportFormat control SPC p; "" and zero mean the
	// working directory and CSV.
	ExportDir    string
	ExportFormat codec.Format
}

// AppModel is the root model. It owns the pipeline; nothing else may touch
// the registry or the loaded list while the program runs.
type AppModel struct {
	Mode       AppMode
	Pipeline   *ingest.Pipeline
	KeyHandler *KeyHandler
	Focus      *FocusManager
	Overlays   OverlayStack
	Sidebar    *Sidebar
	Reactive   bool

	ctx          context.Context
	recorder     *logging.Recorder
	logger       *slog.Logger
	interval     time.Duration
	feedReady    <-chan struct{}
	cloudLoad    func()
	initial      []ingest.DroppedFile
	exportDir    string
	exportFormat codec.Format
	notice       statusNotice
	spinner      spinner.Model
	spinning     bool
	ticking      bool
	width        int
	height       int
}

var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter implements tea.Model on top of AppModel.
type appModelAdapter struct {
	*AppModel
}

// NewAppModel creates the root model.
func NewAppModel(opts Options) *AppModel {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Pipeline == nil {
		panic("ui: Options.Pipeline is required")
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.ExportFormat == 0 {
		opts.ExportFormat = codec.FormatCSV
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = Styles.Drop

	a := &AppModel{
		Mode:       ModePanes,
		Pipeline:   opts.Pipeline,
		KeyHandler: NewKeyHandler(DefaultKeybinds()),
		Focus:      NewFocusManager(RegionPanes, RegionLoaded),
		Sidebar:    NewSidebar(),
		Reactive:   opts.Reactive,
		ctx:        opts.Context,
		recorder:   opts.Recorder,
		logger:     opts.Logger,
		interval:   opts.TickInterval,
		feedReady:  opts.FeedReady,
		cloudLoad:  opts.CloudLoad,
		initial:    opts.Initial,
		spinner:    s,

		exportDir:    opts.ExportDir,
		exportFormat: opts.ExportFormat,
	}
	a.Focus.OnChange = func(_, to string) { a.Mode = modeForRegion(to) }
	a.Pipeline.Registry.SetLayout(opts.Layout)
	return a
}

// AsTeaModel returns the tea.Model for tea.NewProgram.
func (a *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: a}
}

func (a *appModelAdapter) Init() tea.Cmd {
	var cmds []tea.Cmd
	if len(a.initial) > 0 {
		cmds = append(cmds, send(FilesDroppedMsg{Files: a.initial}))
		a.initial = nil
	}
	if a.Reactive {
		a.ticking = true
		cmds = append(cmds, a.tick())
	}
	cmds = append(cmds, waitForFeed(a.feedReady))
	return tea.Batch(cmds...)
}

// Update handles one message as one frame: the message is applied, pending
// closes are carried out, then the feed is drained.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.handle(msg)
	return a, tea.Batch(cmd, a.endFrame())
}

func (a *AppModel) handle(msg tea.Msg) tea.Cmd {
	reg := a.Pipeline.Registry
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a.Overlays.Broadcast(msg)
	case tickMsg:
		if !a.Reactive {
			a.ticking = false
			return nil
		}
		return a.tick()
	case feedReadyMsg:
		return waitForFeed(a.feedReady)
	case spinner.TickMsg:
		if !a.waitingForLive() {
			a.spinning = false
			return nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return cmd
	case FilesDroppedMsg:
		a.dropFiles(msg.Files)
	case ToggleLiveMsg:
		if id, opened := a.Pipeline.ToggleLive(msg.Kind); opened {
			reg.SetFocus(id)
		}
	case SetLayoutMsg:
		reg.SetLayout(msg.Layout)
	case ClosePaneMsg:
		reg.RequestClose(msg.ID)
	case ResetMsg:
		a.Pipeline.Reset()
		a.Overlays.Clear()
		a.Sidebar.Cursor, a.Sidebar.Offset = 0, 0
		a.Sidebar.CancelDrag()
	case DeleteAllMsg:
		a.Pipeline.Loaded.DeleteAll()
		a.logger.Info("loaded list cleared")
	case showConfirmMsg:
		a.Overlays.Push(Overlay{View: msg.modal})
	case ShowSelectedMsg:
		n := a.Pipeline.ShowSelected()
		a.logger.Info("showing selected frames", "panes", n)
	case ToggleSidebarMsg:
		a.Sidebar.Visible = !a.Sidebar.Visible
		a.Focus.SetHidden(RegionLoaded, !a.Sidebar.Visible)
	case ToggleReactiveMsg:
		a.Reactive = !a.Reactive
		a.logger.Info("reactive mode", "enabled", a.Reactive)
		if a.Reactive && !a.ticking {
			a.ticking = true
			return a.tick()
		}
	case CloudLoadMsg:
		if a.cloudLoad == nil {
			a.logger.Warn("cloud storage is not configured")
			return nil
		}
		a.cloudLoad()
	case ShowLogsMsg:
		w := NewLogWindow(a.recorder)
		a.Overlays.Push(Overlay{View: w, Dismiss: "esc"})
		return a.sized(w)
	case ShowSettingsMsg:
		if id, ok := reg.Focused(); ok {
			a.Overlays.Push(Overlay{View: NewSettingsOverlay(reg, id)})
		}
	case ExportPaneMsg:
		return a.exportPane()
	case paneExportedMsg:
		if msg.Err != nil {
			a.logger.Error("export failed", "error", msg.Err)
			return nil
		}
		a.logger.Info("pane exported", "path", msg.Path)
		a.notice = statusNotice{text: "exported " + msg.Path, at: a.Pipeline.Now()}
	case DismissModalMsg:
		a.Overlays.Pop()
	case cycleFocusMsg:
		if msg.delta < 0 {
			a.Focus.Prev()
		} else {
			a.Focus.Next()
		}
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.MouseMsg:
		a.handleMouse(msg)
	}
	return nil
}

// sized hands the current window size to a freshly pushed overlay.
func (a *AppModel) sized(v View) tea.Cmd {
	if a.width == 0 {
		return v.Init()
	}
	_, cmd := v.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	return tea.Batch(v.Init(), cmd)
}

// endFrame runs after every message: closes requested during the frame are
// applied, the feed is drained, and overlays see the new state.
func (a *AppModel) endFrame() tea.Cmd {
	reg := a.Pipeline.Registry
	if n := reg.ApplyPendingClose(); n > 0 {
		a.logger.Debug("panes closed", "count", n)
	}
	if rep := a.Pipeline.Tick(a.ctx); !rep.Empty() {
		a.logger.Debug("feed drained",
			"frames", rep.Frames, "inserted", rep.Inserted, "live", rep.Live,
			"unsupported", rep.Unsupported, "errors", rep.Errors)
	}
	if _, ok := reg.Focused(); !ok {
		reg.FocusNext()
	}
	a.Sidebar.Clamp(a.Pipeline.Loaded.Len(), a.layout().Sidebar)

	cmds := []tea.Cmd{a.Overlays.Broadcast(frameMsg{})}
	if !a.spinning && a.waitingForLive() {
		a.spinning = true
		cmds = append(cmds, a.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (a *AppModel) tick() tea.Cmd {
	return tea.Tick(a.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// waitForFeed blocks on the feed signal in a command goroutine.
func waitForFeed(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return feedReadyMsg{}
	}
}

// waitingForLive reports whether a live pane has no data yet.
func (a *AppModel) waitingForLive() bool {
	reg := a.Pipeline.Registry
	for _, id := range reg.Active() {
		p, _ := reg.Get(id)
		if p.IsRealTime() && a.Pipeline.Live.Frame(p.Kind) == nil {
			return true
		}
	}
	return false
}

func (a *AppModel) dropFiles(files []ingest.DroppedFile) {
	rep := a.Pipeline.DropFiles(a.ctx, files)
	a.logger.Info("files dropped", "files", len(files), "loaded", rep.Loaded, "failed", rep.Failed, "panes", rep.Inserted)
	if rep.Loaded > 0 {
		a.Sidebar.Cursor = a.Pipeline.Loaded.Len() - 1
	}
}

// handlePaste treats pasted text as dropped file paths, which is what
// terminals send when files are dragged onto them. Reading happens in a
// command; parsing happens back on the UI goroutine.
func (a *AppModel) handlePaste(text string) tea.Cmd {
	paths := dropwatch.ParsePaste(text)
	if len(paths) == 0 {
		return nil
	}
	return func() tea.Msg {
		return FilesDroppedMsg{Files: dropwatch.ReadFiles(paths)}
	}
}

func (a *AppModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Paste {
		return a.handlePaste(string(msg.Runes))
	}
	if top, ok := a.Overlays.Peek(); ok {
		if msg.String() == "ctrl+c" {
			return tea.Quit
		}
		if top.IsDismissKey(msg.String()) {
			a.Overlays.Pop()
			return nil
		}
		cmd, _ := a.Overlays.UpdateTop(msg)
		return cmd
	}
	if consumed, cmd := a.KeyHandler.Handle(msg, a.Mode); consumed {
		return cmd
	}
	if a.Mode == ModeLoaded {
		return a.handleLoadedKey(msg)
	}
	return a.handlePaneKey(msg)
}

func (a *AppModel) handlePaneKey(msg tea.KeyMsg) tea.Cmd {
	reg := a.Pipeline.Registry
	switch msg.String() {
	case "]", "right", "l":
		reg.FocusNext()
		return nil
	case "[", "left", "h":
		reg.FocusPrev()
		return nil
	}
	id, ok := reg.Focused()
	if !ok {
		return nil
	}
	p, _ := reg.Get(id)
	switch msg.String() {
	case "x":
		reg.RequestClose(id)
	case "v":
		p.View = p.View.Toggle()
	case "+", "=":
		p.Settings.Precision = min(p.Settings.Precision+1, pane.MaxPrecision)
	case "-":
		p.Settings.Precision = max(p.Settings.Precision-1, 0)
	case "enter", "o":
		return send(ShowSettingsMsg{})
	case "e":
		return send(ExportPaneMsg{})
	case "down", "j":
		a.scrollPane(id, 1)
	case "up", "k":
		a.scrollPane(id, -1)
	case "pgdown":
		a.scrollPane(id, a.visibleRows(id))
	case "pgup":
		a.scrollPane(id, -a.visibleRows(id))
	case "g":
		p.State.Offset = 0
	case "G":
		a.scrollPane(id, 1<<30)
	}
	return nil
}

func (a *AppModel) handleLoadedKey(msg tea.KeyMsg) tea.Cmd {
	list := a.Pipeline.Loaded
	sb := a.Sidebar
	switch msg.String() {
	case "down", "j":
		sb.Cursor++
	case "up", "k":
		sb.Cursor--
	case "enter", "x":
		list.ToggleSelect(sb.Cursor)
	case "m":
		list.ToggleSelectModified(sb.Cursor)
	case "a":
		list.ToggleAll()
	case "d":
		list.Delete(sb.Cursor)
	case "D":
		if list.Len() > 0 {
			return send(showConfirmMsg{modal: NewConfirmModal("Delete all?",
				fmt.Sprintf("Forget %d loaded frames.", list.Len()), DeleteAllMsg{})})
		}
	case "s":
		return send(ShowSelectedMsg{})
	case "K":
		sb.MoveUp(list)
	case "J":
		sb.MoveDown(list)
	}
	sb.Clamp(list.Len(), a.layout().Sidebar)
	return nil
}

// scrollPane moves a table pane's first visible row by delta.
func (a *AppModel) scrollPane(id pane.TileID, delta int) {
	p, ok := a.Pipeline.Registry.Get(id)
	if !ok {
		return
	}
	total := 0
	if s := a.Pipeline.FrameFor(p); s != nil && s.Frame != nil {
		total = len(p.Settings.Filter.Rows(s.Frame))
	}
	p.State.Offset = clampOffset(p.State.Offset+delta, total, a.visibleRows(id))
}

// visibleRows is how many table rows the tile shows.
func (a *AppModel) visibleRows(id pane.TileID) int {
	for _, t := range a.layout().Tiles {
		if t.ID == id {
			// border, title, table header and footer
			return max(t.Rect.H-6, 1)
		}
	}
	return 1
}

func (a *AppModel) handleMouse(msg tea.MouseMsg) {
	l := a.layout()
	list := a.Pipeline.Loaded
	reg := a.Pipeline.Registry

	switch msg.Action {
	case tea.MouseActionMotion:
		if i, ok := a.Sidebar.RowAt(l.Sidebar, list.Len(), msg.X, msg.Y); ok {
			a.Sidebar.DragOver(i)
		}
		return
	case tea.MouseActionRelease:
		a.Sidebar.EndDrag(list)
		return
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		delta := 1
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1
		}
		if l.Sidebar.Contains(msg.X, msg.Y) {
			a.Sidebar.Cursor += delta
			a.Sidebar.Clamp(list.Len(), l.Sidebar)
		} else if id, ok := l.TileAt(msg.X, msg.Y); ok {
			a.scrollPane(id, delta)
		}
	case tea.MouseButtonLeft:
		if i, ok := a.Sidebar.RowAt(l.Sidebar, list.Len(), msg.X, msg.Y); ok {
			a.Focus.SetFocus(RegionLoaded)
			a.Sidebar.BeginDrag(i, msg.Ctrl || msg.Shift || msg.Alt)
			return
		}
		if id, ok := l.CloseAt(msg.X, msg.Y); ok {
			reg.RequestClose(id)
			return
		}
		id, ok := l.TabAt(msg.X, msg.Y)
		if !ok {
			id, ok = l.TileAt(msg.X, msg.Y)
		}
		if ok {
			reg.SetFocus(id)
			a.Focus.SetFocus(RegionPanes)
		}
	}
}

// layout splits the screen for the current state.
func (a *AppModel) layout() Layout {
	reg := a.Pipeline.Registry
	focused, _ := reg.Focused()
	sidebar := 0
	if a.Sidebar.Visible {
		sidebar = min(SidebarWidth, a.width/2)
	}
	reserved := 0
	if help := a.leaderHelp(); help != "" {
		reserved = lipgloss.Height(help)
	}
	return ComputeLayout(a.width, a.height, sidebar, reserved, reg.Layout(), reg.Active(), focused)
}

func (a *AppModel) leaderHelp() string {
	if !a.KeyHandler.LeaderWaiting {
		return ""
	}
	return RenderKeybindHelp(a.KeyHandler, a.Mode)
}

func (a *appModelAdapter) View() string {
	if a.width == 0 || a.height == 0 {
		return ""
	}
	l := a.layout()
	bodyH := l.Main.H

	var body string
	if top, ok := a.Overlays.Peek(); ok {
		body = lipgloss.Place(a.width, bodyH, lipgloss.Center, lipgloss.Center, top.View.View())
	} else {
		main := a.renderMain(l)
		if !l.Sidebar.Empty() {
			main = lipgloss.JoinHorizontal(lipgloss.Top, a.Sidebar.Render(a.Pipeline.Loaded, l.Sidebar, a.Mode == ModeLoaded), main)
		}
		body = main
	}

	parts := []string{body}
	if help := a.leaderHelp(); help != "" {
		parts = append(parts, help)
	}
	parts = append(parts, a.statusLine(l.Status.W))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderMain draws the tiles row by row in layout order.
func (a *AppModel) renderMain(l Layout) string {
	if l.Main.Empty() {
		return ""
	}
	reg := a.Pipeline.Registry
	if len(l.Tiles) == 0 {
		hint := Styles.Empty.Render("SPC l opens a live pane · drop or paste files to load them")
		return lipgloss.Place(l.Main.W, l.Main.H, lipgloss.Center, lipgloss.Center, hint)
	}
	focused, _ := reg.Focused()
	now := a.Pipeline.Now()

	var rows []string
	if len(l.Tabs) > 0 {
		titles := make(map[pane.TileID]string, len(l.Tabs))
		for _, t := range l.Tabs {
			if p, ok := reg.Get(t.ID); ok {
				titles[t.ID] = p.Icon() + " " + p.Kind.Label()
			}
		}
		rows = append(rows, renderTabBar(l, titles, focused))
	}

	var row []string
	rowY := l.Tiles[0].Rect.Y
	for _, t := range l.Tiles {
		if t.Rect.Y != rowY {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowY = nil, t.Rect.Y
		}
		p, ok := reg.Get(t.ID)
		if !ok {
			continue
		}
		row = append(row, renderTile(p, tileContext{
			rect:    t.Rect,
			focused: t.ID == focused && a.Mode == ModePanes,
			now:     now,
			series:  a.Pipeline.FrameFor(p),
			spinner: a.spinner.View(),
		}))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// statusNotice is a short confirmation shown in the status line.
type statusNotice struct {
	text string
	at   time.Time
}

// statusLine shows counts and mode on the left and the latest warning on
// the right while it is fresh.
func (a *AppModel) statusLine(w int) string {
	reg := a.Pipeline.Registry
	live := 0
	for _, id := range reg.Active() {
		if p, _ := reg.Get(id); p.IsRealTime() {
			live++
		}
	}
	left := fmt.Sprintf(" %s %d  %s %d  loaded %d  %s  %s",
		pane.IconLive, live, pane.IconLoaded, reg.Len()-live,
		a.Pipeline.Loaded.Len(), reg.Layout(), strings.ToLower(a.Mode.String()))
	if a.Reactive {
		left += "  reactive"
	}
	left = Styles.Muted.Render(left)

	right := ""
	room := w - lipgloss.Width(left) - 2
	now := a.Pipeline.Now()
	shown := statusNotice{}
	if a.recorder != nil {
		if e, ok := a.recorder.Last(); ok && now.Sub(e.Time) < statusTTL {
			shown = statusNotice{text: e.Message, at: e.Time}
			right = levelStyle(e.Level).Render(textutil.Truncate(e.Message, room))
		}
	}
	if a.notice.text != "" && now.Sub(a.notice.at) < statusTTL && !a.notice.at.Before(shown.at) {
		right = Styles.Normal.Render(textutil.Truncate(a.notice.text, room))
	}
	gap := max(w-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}
