package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/playmatatu/pitch/internal/client"
	"github.com/playmatatu/pitch/internal/game"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		server      string
		gameToken   string
		playerToken string
		create      bool
	)
	flag.StringVar(&server, "server", getenv("PITCH_SERVER", "http://127.0.0.1:8080"), "server base URL")
	flag.StringVar(&gameToken, "game", "", "game token to join")
	flag.StringVar(&playerToken, "pt", "", "player token (empty to watch)")
	flag.BoolVar(&create, "create", false, "create a new game and join it as player one")
	flag.Parse()

	if create {
		created, err := client.CreateGame(server, game.Geometry{})
		if err != nil {
			log.Fatalf("Failed to create game: %v", err)
		}
		log.Printf("Game %s created", created.GameID)
		log.Printf("  game token:       %s", created.GameToken)
		log.Printf("  player two token: %s", created.PlayerTwoToken)
		log.Printf("  host key:         %s", created.HostKey)
		gameToken, playerToken = created.GameToken, created.PlayerOneToken
	}
	if gameToken == "" {
		log.Fatal("-game or -create is required")
	}

	url, err := client.JoinURL(server, gameToken, playerToken)
	if err != nil {
		log.Fatalf("Bad server URL: %v", err)
	}
	n, err := client.Dial(url)
	if err != nil {
		log.Fatalf("Failed to join game: %v", err)
	}

	app := NewApp(n)
	defer app.Close()

	ebiten.SetWindowSize(540, 960)
	ebiten.SetWindowTitle("Pitch")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(app); err != nil {
		log.Fatal(err)
	}
}
