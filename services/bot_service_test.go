package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/Dosada05/checkmate-cup/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatewayStub(t *testing.T, status int, reply string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{"role": "assistant", "content": reply}},
				},
			})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestBot(url string) BotService {
	return NewBotService(BotConfig{APIKey: "test-key", GatewayURL: url, Model: "test-model"}, nil, nil)
}

func TestExtractMove(t *testing.T) {
	tests := map[string]string{
		"e2e4":             "e2e4",
		"  E7E8Q\n":        "e7e8q",
		"g1f3 is the best": "g1f3",
		"Nf3":              "nf3",
		"":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, extractMove(in), in)
	}
}

func TestSuggestMove_Request(t *testing.T) {
	var seen chatRequest
	srv := gatewayStub(t, http.StatusOK, "e7e5", &seen)

	move, err := newTestBot(srv.URL).SuggestMove(context.Background(), models.StartingFEN, DifficultyMaster)
	require.NoError(t, err)
	assert.Equal(t, "e7e5", move)

	assert.Equal(t, "test-model", seen.Model)
	assert.Equal(t, 0.1, seen.Temperature)
	assert.Equal(t, 10, seen.MaxTokens)
	require.Len(t, seen.Messages, 2)
	assert.Contains(t, seen.Messages[0].Content, "chess master")
	assert.Contains(t, seen.Messages[1].Content, models.StartingFEN)
}

func TestSuggestMove_UnknownDifficultyUsesIntermediate(t *testing.T) {
	var seen chatRequest
	srv := gatewayStub(t, http.StatusOK, "e2e4", &seen)

	_, err := newTestBot(srv.URL).SuggestMove(context.Background(), models.StartingFEN, "grandmaster")
	require.NoError(t, err)
	assert.Equal(t, 0.5, seen.Temperature)
	assert.Contains(t, seen.Messages[0].Content, "intermediate chess player")
}

func TestSuggestMove_GatewayErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrBotRateLimited},
		{http.StatusPaymentRequired, ErrBotCreditsExhausted},
		{http.StatusInternalServerError, ErrBotUnavailable},
	}
	for _, tt := range tests {
		srv := gatewayStub(t, tt.status, "", nil)
		_, err := newTestBot(srv.URL).SuggestMove(context.Background(), models.StartingFEN, DifficultyBeginner)
		assert.ErrorIs(t, err, tt.want)
	}
}

func TestSuggestMove_NotConfigured(t *testing.T) {
	bot := NewBotService(BotConfig{GatewayURL: "http://unused"}, nil, nil)
	_, err := bot.SuggestMove(context.Background(), models.StartingFEN, DifficultyBeginner)
	assert.ErrorIs(t, err, ErrBotNotConfigured)
}

func TestPracticeMove(t *testing.T) {
	ctx := context.Background()

	legal := gatewayStub(t, http.StatusOK, "g1f3", nil)
	move, err := newTestBot(legal.URL).PracticeMove(ctx, models.StartingFEN, DifficultyAdvanced)
	require.NoError(t, err)
	assert.Equal(t, PracticeMove{Move: "g1f3", Source: MoveSourceBot}, *move)

	illegal := gatewayStub(t, http.StatusOK, "e2e5", nil)
	move, err = newTestBot(illegal.URL).PracticeMove(ctx, models.StartingFEN, DifficultyAdvanced)
	require.NoError(t, err)
	assert.Equal(t, MoveSourceFallback, move.Source)
	assert.True(t, rules.IsLegal(models.StartingFEN, move.Move))

	broken := gatewayStub(t, http.StatusBadGateway, "", nil)
	move, err = newTestBot(broken.URL).PracticeMove(ctx, models.StartingFEN, DifficultyAdvanced)
	require.NoError(t, err)
	assert.Equal(t, MoveSourceFallback, move.Source)

	limited := gatewayStub(t, http.StatusTooManyRequests, "", nil)
	_, err = newTestBot(limited.URL).PracticeMove(ctx, models.StartingFEN, DifficultyAdvanced)
	assert.ErrorIs(t, err, ErrBotRateLimited)

	_, err = newTestBot(legal.URL).PracticeMove(ctx, "garbage", DifficultyAdvanced)
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestCommentary(t *testing.T) {
	bot := newTestBot("http://unused")
	for i := 0; i < 20; i++ {
		assert.Contains(t, commentaries, bot.Commentary(i, "e2e4"))
	}
}
