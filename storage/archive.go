package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
)

const archiveEvent = "Checkmate Cup"

// Archive кладёт PGN завершённых партий и снимки чемпионов в объектное хранилище.
// With a nil uploader every call is a no-op.
type Archive struct {
	uploader FileUploader
}

func NewArchive(uploader FileUploader) *Archive {
	return &Archive{uploader: uploader}
}

func (a *Archive) Enabled() bool {
	return a != nil && a.uploader != nil
}

func GameKey(tournamentID *uuid.UUID, gameID uuid.UUID) string {
	if tournamentID == nil {
		return fmt.Sprintf("games/%s.pgn", gameID)
	}
	return fmt.Sprintf("tournaments/%s/games/%s.pgn", tournamentID, gameID)
}

func ChampionsKey(tournamentID uuid.UUID) string {
	return fmt.Sprintf("tournaments/%s/champions.json", tournamentID)
}

func pgnResult(r models.GameResult) string {
	switch r {
	case models.ResultWhiteWins:
		return "1-0"
	case models.ResultBlackWins:
		return "0-1"
	case models.ResultDraw:
		return "1/2-1/2"
	}
	return "*"
}

// RenderPGN adds the seven-tag roster unless the stored PGN already carries tags.
func RenderPGN(g *models.Game, white, black string) string {
	body := strings.TrimSpace(g.PGN)
	if strings.HasPrefix(body, "[") {
		return body + "\n"
	}
	date := "????.??.??"
	if g.EndedAt != nil {
		date = g.EndedAt.UTC().Format("2006.01.02")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[Event \"%s\"]\n", archiveEvent)
	fmt.Fprintf(&b, "[Site \"?\"]\n")
	fmt.Fprintf(&b, "[Date \"%s\"]\n", date)
	fmt.Fprintf(&b, "[Round \"%d\"]\n", g.Round)
	fmt.Fprintf(&b, "[White \"%s\"]\n", white)
	fmt.Fprintf(&b, "[Black \"%s\"]\n", black)
	fmt.Fprintf(&b, "[Result \"%s\"]\n", pgnResult(g.Result))
	if g.FEN != "" && g.FEN != models.StartingFEN && body == "" {
		fmt.Fprintf(&b, "[FEN \"%s\"]\n", g.FEN)
	}
	b.WriteString("\n")
	if body == "" {
		body = pgnResult(g.Result)
	}
	b.WriteString(body)
	b.WriteString("\n")
	return b.String()
}

func (a *Archive) StoreGame(ctx context.Context, g *models.Game, white, black string) (*UploadResult, error) {
	if !a.Enabled() {
		return nil, nil
	}
	pgn := RenderPGN(g, white, black)
	return a.uploader.Upload(ctx, GameKey(g.TournamentID, g.ID), ContentTypePGN, strings.NewReader(pgn))
}

type championsDocument struct {
	Champion *models.Champion           `json:"champion"`
	Standing []*models.TournamentPlayer `json:"standing"`
}

func (a *Archive) StoreChampions(ctx context.Context, c *models.Champion, standing []*models.TournamentPlayer) (*UploadResult, error) {
	if !a.Enabled() {
		return nil, nil
	}
	body, err := json.MarshalIndent(championsDocument{Champion: c, Standing: standing}, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to encode champions archive: %w", err)
	}
	return a.uploader.Upload(ctx, ChampionsKey(c.TournamentID), ContentTypeJSON, bytes.NewReader(body))
}

// PurgeTournament removes every archived object of a tournament that is being reset.
func (a *Archive) PurgeTournament(ctx context.Context, tournamentID uuid.UUID, gameIDs []uuid.UUID) error {
	if !a.Enabled() {
		return nil
	}
	var errs []error
	for _, id := range gameIDs {
		if err := a.uploader.Delete(ctx, GameKey(&tournamentID, id)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.uploader.Delete(ctx, ChampionsKey(tournamentID)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
