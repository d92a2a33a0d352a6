package main

import (
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/playmatatu/pitch/internal/client"
	"github.com/playmatatu/pitch/internal/game"
	"github.com/playmatatu/pitch/internal/protocol"
	"golang.org/x/image/font/basicfont"
)

const (
	paddleRadius = game.PaddleHitDistance - game.BallRadius
	centerCircle = 120.0
)

var (
	grassColor  = color.NRGBA{0x2e, 0x7d, 0x32, 0xff}
	lineColor   = color.NRGBA{0xff, 0xff, 0xff, 0xc0}
	netColor    = color.NRGBA{0xee, 0xee, 0xee, 0x60}
	ballColor   = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	oneColor    = color.NRGBA{0xe5, 0x39, 0x35, 0xff}
	twoColor    = color.NRGBA{0x1e, 0x88, 0xe5, 0xff}
	textColor   = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	bannerColor = color.NRGBA{0x00, 0x00, 0x00, 0xa0}
)

// App draws the latest snapshot and forwards local pointers.
type App struct {
	net   *client.Net
	model client.Model
	input *client.Tracker

	touchIDs []ebiten.TouchID
	winW     int
	winH     int
}

func NewApp(n *client.Net) *App {
	return &App{net: n, input: client.NewTracker(), model: client.Model{Status: "Connecting..."}}
}

func (a *App) Update() error {
	a.drain()

	if a.model.Ended || a.net.IsClosed() || a.model.Spectator || !a.model.HasState {
		return nil
	}

	view := a.view()
	now := map[int64]game.Vec2{}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		now[client.MousePointer] = view.ToPitch(mx, my)
	}
	a.touchIDs = ebiten.AppendTouchIDs(a.touchIDs[:0])
	for _, id := range a.touchIDs {
		x, y := ebiten.TouchPosition(id)
		now[int64(id)+1] = view.ToPitch(x, y)
	}
	for _, p := range a.input.Diff(now) {
		a.send(protocol.TypePointer, p)
	}

	if a.model.State.ShowGoalDialog && a.dismissPressed() {
		a.send(protocol.TypeDismiss, nil)
	}
	return nil
}

func (a *App) dismissPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter)
}

// drain applies every message that arrived since the last frame.
func (a *App) drain() {
	for {
		select {
		case m, ok := <-a.net.In():
			if !ok {
				if !a.model.Ended {
					a.model.Status = "Disconnected"
				}
				return
			}
			if err := a.model.Apply(m); err != nil {
				log.Printf("NET: %v", err)
			}
		default:
			return
		}
	}
}

func (a *App) send(t string, v interface{}) {
	if err := a.net.Send(t, v); err != nil {
		log.Printf("NET: send(%s) failed: %v", t, err)
	}
}

func (a *App) view() client.View {
	return client.NewView(a.model.State.Geometry, a.winW, a.winH, a.model.Flip())
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(grassColor)
	if !a.model.HasState {
		text.Draw(screen, a.model.Status, basicfont.Face7x13, 12, 20, textColor)
		return
	}

	v := a.view()
	st := a.model.State
	g := st.Geometry

	// Pitch outline, halfway line, center circle.
	x, y, w, h := v.Rect(
		game.Vec2{X: g.PitchHorizontalPadding, Y: g.PitchVerticalPadding},
		game.Vec2{X: g.ScreenWidth - g.PitchHorizontalPadding, Y: g.ScreenHeight - g.PitchVerticalPadding},
	)
	vector.StrokeRect(screen, x, y, w, h, 3, lineColor, true)
	lx1, ly1 := v.ToScreen(game.Vec2{X: g.PitchHorizontalPadding, Y: g.ScreenHeight / 2})
	lx2, ly2 := v.ToScreen(game.Vec2{X: g.ScreenWidth - g.PitchHorizontalPadding, Y: g.ScreenHeight / 2})
	vector.StrokeLine(screen, lx1, ly1, lx2, ly2, 3, lineColor, true)
	cx, cy := v.ToScreen(game.Vec2{X: g.ScreenWidth / 2, Y: g.ScreenHeight / 2})
	vector.StrokeCircle(screen, cx, cy, v.Length(centerCircle), 3, lineColor, true)

	// Goal nets extend past the padded lines.
	left, right := g.ScreenWidth/2-game.GoalWidth/2, g.ScreenWidth/2+game.GoalWidth/2
	for _, net := range [][2]game.Vec2{
		{{X: left, Y: g.PitchVerticalPadding - game.GoalDepth}, {X: right, Y: g.PitchVerticalPadding}},
		{{X: left, Y: g.ScreenHeight - g.PitchVerticalPadding}, {X: right, Y: g.ScreenHeight - g.PitchVerticalPadding + game.GoalDepth}},
	} {
		x, y, w, h := v.Rect(net[0], net[1])
		vector.DrawFilledRect(screen, x, y, w, h, netColor, true)
		vector.StrokeRect(screen, x, y, w, h, 2, lineColor, true)
	}

	drawDisc(screen, v, st.PaddleOffset(game.PaddleOne), paddleRadius, oneColor)
	drawDisc(screen, v, st.PaddleOffset(game.PaddleTwo), paddleRadius, twoColor)
	drawDisc(screen, v, st.BallOffset, game.BallRadius, ballColor)

	text.Draw(screen, a.model.Scoreline(), basicfont.Face7x13, 12, 20, textColor)
	text.Draw(screen, a.model.Status, basicfont.Face7x13, 12, 38, textColor)

	if banner := a.model.Banner(); banner != "" {
		bw := float32(a.winW)
		vector.DrawFilledRect(screen, 0, float32(a.winH)/2-30, bw, 60, bannerColor, true)
		text.Draw(screen, banner, basicfont.Face7x13, 20, a.winH/2-4, textColor)
		if !a.model.Spectator {
			text.Draw(screen, "press space to kick off", basicfont.Face7x13, 20, a.winH/2+14, textColor)
		}
	}
}

func drawDisc(screen *ebiten.Image, v client.View, at game.Vec2, r float64, c color.Color) {
	x, y := v.ToScreen(at)
	vector.DrawFilledCircle(screen, x, y, v.Length(r), c, true)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.winW, a.winH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Close lifts any held pointers before dropping the connection.
func (a *App) Close() {
	for _, p := range a.input.ReleaseAll() {
		a.send(protocol.TypePointer, p)
	}
	a.net.Close()
}
