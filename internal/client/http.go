package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/playmatatu/pitch/internal/game"
)

// Created is the server's answer to a new game.
type Created struct {
	GameID         string        `json:"game_id"`
	GameToken      string        `json:"game_token"`
	PlayerOneToken string        `json:"player_one_token"`
	PlayerTwoToken string        `json:"player_two_token"`
	HostKey        string        `json:"host_key"`
	Geometry       game.Geometry `json:"geometry"`
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// CreateGame asks the server for a new game. A zero geometry uses the server default.
func CreateGame(server string, geom game.Geometry) (*Created, error) {
	body, err := json.Marshal(geom)
	if err != nil {
		return nil, err
	}
	url := strings.TrimSuffix(server, "/") + "/api/v1/pitch"
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, fmt.Errorf("create game: HTTP %d: %s", resp.StatusCode, e.Error)
	}

	var out Created
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
