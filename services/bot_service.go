package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Dosada05/checkmate-cup/rules"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyMaster       Difficulty = "master"
)

const (
	MoveSourceBot      = "bot"
	MoveSourceFallback = "fallback"
)

var difficultyPrompts = map[Difficulty]string{
	DifficultyBeginner:     "You are a beginner chess player. Make reasonable but not optimal moves. Sometimes miss obvious tactics. Play like someone learning chess.",
	DifficultyIntermediate: "You are an intermediate chess player (around 1200-1400 ELO). Play solid moves but occasionally miss deeper tactics. Balance between offense and defense.",
	DifficultyAdvanced:     "You are an advanced chess player (around 1600-1800 ELO). Play strong positional moves and look for tactical opportunities. Avoid blunders.",
	DifficultyMaster:       "You are a chess master (2000+ ELO). Play the strongest move possible. Look for deep tactics, positional advantages, and optimal piece coordination.",
}

const botRules = `You are playing a chess game. Given the current board position in FEN notation, analyze and return your next move.

CRITICAL RULES:
1. You MUST return ONLY a valid chess move in UCI format (e.g., "e2e4", "g1f3", "e7e8q" for pawn promotion)
2. The move MUST be legal given the current position
3. DO NOT include any explanation, just the move
4. Consider the position carefully before responding
5. If you're in check, you MUST get out of check
6. DO NOT return moves that would put or leave your king in check`

var (
	uciPrefix   = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?`)
	notUCIChars = regexp.MustCompile(`[^a-h1-8qrbn]`)
)

var commentaries = []string{
	"This game is more intense than my morning coffee! ☕",
	"I've seen soap operas with less drama!",
	"Someone call Netflix, this needs a documentary!",
	"The pieces are sweating more than me in a job interview!",
	"This is why I stick to checkers... just kidding, checkers is boring!",
	"Plot twist: the real treasure was the blunders we made along the way!",
	"If chess was easy, it would be called 'moving pieces randomly'!",
	"The tension is thicker than my holiday fruitcake!",
	"Breaking news: pawns demand better working conditions!",
	"This game has more twists than a pretzel factory!",
	"The knights are getting dizzy from all this action!",
	"Somewhere, a grandmaster just felt a disturbance in the force!",
	"These moves are spicier than my grandma's curry!",
	"The bishops are praying for a miracle!",
	"Even the board is stressed out!",
	"This is peak entertainment! Reality TV could never!",
	"The rooks are shook! Get it? Shook rooks? I'll see myself out...",
	"My pet goldfish plays better! ...okay maybe not.",
	"The chess clock is having an existential crisis!",
	"Professional chess players are taking notes!",
}

// PracticeMove - ход бота для тренировочной партии.
type PracticeMove struct {
	Move   string `json:"move"`
	Source string `json:"source"`
}

type BotService interface {
	// SuggestMove asks the AI gateway for a move. The move is returned as the gateway
	// sent it and may be illegal.
	SuggestMove(ctx context.Context, fen string, difficulty Difficulty) (string, error)
	// PracticeMove always returns a legal move, falling back to a random one.
	PracticeMove(ctx context.Context, fen string, difficulty Difficulty) (*PracticeMove, error)
	Commentary(moveCount int, lastMove string) string
}

type BotConfig struct {
	APIKey     string
	GatewayURL string
	Model      string
}

type botService struct {
	cfg    BotConfig
	client *http.Client
	logger *slog.Logger
}

func NewBotService(cfg BotConfig, client *http.Client, logger *slog.Logger) BotService {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &botService{cfg: cfg, client: client, logger: loggerOrDefault(logger)}
}

func temperature(d Difficulty) float64 {
	switch d {
	case DifficultyBeginner:
		return 0.9
	case DifficultyMaster:
		return 0.1
	}
	return 0.5
}

func systemPrompt(d Difficulty) string {
	prompt, ok := difficultyPrompts[d]
	if !ok {
		prompt = difficultyPrompts[DifficultyIntermediate]
	}
	return prompt + "\n\n" + botRules
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// extractMove pulls a UCI move out of the model's reply.
func extractMove(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if m := uciPrefix.FindString(text); m != "" {
		return m
	}
	if len(text) > 5 {
		text = text[:5]
	}
	return notUCIChars.ReplaceAllString(text, "")
}

func (s *botService) SuggestMove(ctx context.Context, fen string, difficulty Difficulty) (string, error) {
	if s.cfg.APIKey == "" {
		return "", ErrBotNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(difficulty)},
			{Role: "user", Content: fmt.Sprintf("Current position (FEN): %s\n\nWhat is your move? Reply with ONLY the UCI move notation (e.g., e2e4).", fen)},
		},
		Temperature: temperature(difficulty),
		MaxTokens:   10,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.ErrorContext(ctx, "AI gateway request failed", slog.Any("error", err))
		return "", fmt.Errorf("%w: %v", ErrBotUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrBotRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", ErrBotCreditsExhausted
	case resp.StatusCode >= 300:
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.ErrorContext(ctx, "AI gateway error", slog.Int("status", resp.StatusCode), slog.String("body", string(text)))
		return "", ErrBotUnavailable
	}

	var data chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrBotUnavailable, err)
	}
	if len(data.Choices) == 0 {
		return "", nil
	}
	return extractMove(data.Choices[0].Message.Content), nil
}

func (s *botService) PracticeMove(ctx context.Context, fen string, difficulty Difficulty) (*PracticeMove, error) {
	if err := rules.ValidateFEN(fen); err != nil {
		return nil, ErrInvalidPosition
	}

	move, err := s.SuggestMove(ctx, fen, difficulty)
	switch {
	case err == nil && rules.IsLegal(fen, move):
		return &PracticeMove{Move: move, Source: MoveSourceBot}, nil
	case err == nil:
		s.logger.WarnContext(ctx, "bot suggested illegal move", slog.String("move", move), slog.String("fen", fen))
	case errors.Is(err, ErrBotRateLimited), errors.Is(err, ErrBotCreditsExhausted):
		return nil, err
	default:
		s.logger.WarnContext(ctx, "bot unavailable, using fallback", slog.Any("error", err))
	}

	fallback, err := rules.RandomLegalMove(fen)
	if err != nil {
		if errors.Is(err, rules.ErrNoLegalMoves) {
			return nil, ErrGameNotInProgress
		}
		return nil, ErrInvalidPosition
	}
	return &PracticeMove{Move: fallback, Source: MoveSourceFallback}, nil
}

// Commentary ignores the game state and picks a random line.
func (s *botService) Commentary(moveCount int, lastMove string) string {
	return commentaries[rand.IntN(len(commentaries))]
}
