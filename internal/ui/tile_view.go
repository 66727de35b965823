package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tslc "github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"blcsview/internal/frame"
	"blcsview/internal/live"
	"blcsview/internal/pane"
	"blcsview/internal/ui/textutil"
)

const closeGlyph = "✕"

// tileContext is what drawing one tile needs besides the pane.
type tileContext struct {
	rect    Rect
	focused bool
	now     time.Time
	series  *live.Series
	spinner string
}

// renderTile draws a bordered tile: a title row with the close button, then
// the plot or table.
func renderTile(p *pane.Pane, c tileContext) string {
	style := Styles.Tile
	if c.focused {
		style = Styles.TileFocused
	}
	innerW, innerH := max(c.rect.W-2, 0), max(c.rect.H-2, 0)
	style = style.Width(innerW).Height(innerH).MaxWidth(c.rect.W).MaxHeight(c.rect.H)
	if innerW == 0 || innerH == 0 {
		return style.Render("")
	}

	title := p.Title(c.now) + " · " + p.View.String()
	titleStyle := Styles.Title
	if c.focused {
		titleStyle = Styles.TitleFocused
	}
	head := titleStyle.Render(textutil.PadRight(title, innerW-1)) + Styles.Muted.Render(closeGlyph)

	body := renderPaneBody(p, c, innerW, innerH-1)
	return style.Render(head + "\n" + body)
}

func renderPaneBody(p *pane.Pane, c tileContext, w, h int) string {
	if h <= 0 {
		return ""
	}
	if tooSmall(Rect{W: w + 2, H: h + 3}) {
		return Styles.Empty.Render(textutil.Truncate("too small", w))
	}
	var f *frame.Frame
	if c.series != nil {
		f = c.series.Frame
	}
	if f.Height() == 0 {
		topic, _ := p.Topic()
		msg := "empty frame"
		if p.IsRealTime() {
			msg = c.spinner + " waiting for " + topic
		}
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, Styles.Empty.Render(textutil.Truncate(msg, w)))
	}
	if p.View == pane.ViewTable {
		return renderTable(p, f, w, h, c.focused)
	}
	return renderPlot(p, f, w, h)
}

// renderPlot charts the value column (column 1) against the timestamp.
func renderPlot(p *pane.Pane, f *frame.Frame, w, h int) string {
	rows := p.Settings.Filter.Rows(f)
	values := f.Column(1)
	if values.Type() == frame.TypeString || len(rows) == 0 {
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
			Styles.Empty.Render(textutil.Truncate("nothing to plot", w)))
	}

	points := make([]tslc.TimePoint, 0, len(rows))
	tMin, tMax := time.Time{}, time.Time{}
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, i := range rows {
		v, ok := values.Float(i)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ts := rowTime(f, i)
		if len(points) == 0 || ts.Before(tMin) {
			tMin = ts
		}
		if len(points) == 0 || ts.After(tMax) {
			tMax = ts
		}
		yMin, yMax = math.Min(yMin, v), math.Max(yMax, v)
		points = append(points, tslc.TimePoint{Time: ts, Value: v})
	}
	if len(points) == 0 {
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
			Styles.Empty.Render(textutil.Truncate("nothing to plot", w)))
	}
	if !tMax.After(tMin) {
		tMax = tMin.Add(time.Second)
	}
	if yMax-yMin < 1e-9 {
		yMin, yMax = yMin-1, yMax+1
	}

	chart := tslc.New(w, h)
	chart.SetStyle(Styles.PlotLine)
	chart.AxisStyle = Styles.PlotAxis
	chart.LabelStyle = Styles.PlotLabel
	chart.SetTimeRange(tMin, tMax)
	chart.SetViewTimeRange(tMin, tMax)
	chart.SetYRange(yMin, yMax)
	chart.SetViewYRange(yMin, yMax)
	for _, pt := range points {
		chart.Push(pt)
	}
	chart.DrawBraille()
	return chart.View()
}

// rowTime is the x coordinate of row i: the Timestamp column when present,
// else column 0 read as unix seconds, else the row index in seconds.
func rowTime(f *frame.Frame, i int) time.Time {
	if col, ok := f.Lookup(pane.TimestampColumn); ok {
		if ts, ok := col.Time(i); ok {
			return ts
		}
	}
	col := f.Column(0)
	if col.Type() != frame.TypeString {
		if ts, ok := col.Time(i); ok {
			return ts
		}
		if v, ok := col.Float(i); ok {
			return time.Unix(0, int64(v*float64(time.Second))).UTC()
		}
	}
	return time.Unix(int64(i), 0).UTC()
}

// renderTable shows the filtered rows starting at the pane's offset.
func renderTable(p *pane.Pane, f *frame.Frame, w, h int, focused bool) string {
	visible := max(h-2, 1)
	rows := p.Settings.Filter.Rows(f)
	off := clampOffset(p.State.Offset, len(rows), visible)

	cols := f.Columns()
	widths := split(w, len(cols))
	tcols := make([]table.Column, len(cols))
	for i, col := range cols {
		tcols[i] = table.Column{Title: col.Name(), Width: max(widths[i]-2, 1)}
	}

	end := min(off+visible, len(rows))
	trows := make([]table.Row, 0, end-off)
	for _, r := range rows[off:end] {
		row := make(table.Row, len(cols))
		for j, col := range cols {
			row[j] = col.Format(r, p.Settings.Precision)
		}
		trows = append(trows, row)
	}

	t := table.New(
		table.WithColumns(tcols),
		table.WithRows(trows),
		table.WithHeight(visible),
		table.WithWidth(w),
	)
	t.SetStyles(tableStyles(focused))
	footer := fmt.Sprintf("rows %d-%d of %d", min(off+1, end), end, len(rows))
	return t.View() + "\n" + Styles.Muted.Render(textutil.Truncate(footer, w))
}

// clampOffset keeps a scroll offset inside [0, total-visible].
func clampOffset(offset, total, visible int) int {
	return max(min(offset, total-visible), 0)
}

// renderTabBar draws one label per tab; the focused one is highlighted.
func renderTabBar(l Layout, titles map[pane.TileID]string, focused pane.TileID) string {
	var b strings.Builder
	for _, t := range l.Tabs {
		label := textutil.PadRight(" "+titles[t.ID], t.Rect.W)
		if t.ID == focused {
			b.WriteString(Styles.Cursor.Render(label))
		} else {
			b.WriteString(Styles.Muted.Render(label))
		}
	}
	return b.String()
}
