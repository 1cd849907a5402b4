package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/logging"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/services/puzzle"
)

var (
	autoplayGames    int
	autoplaySeed     int64
	autoplayMaxMoves int
)

var autoplayCmd = &cobra.Command{
	Use:   "autoplay",
	Short: "Play seeded games headlessly by always taking the first hint",
	Long: `Runs complete games without a client. Each move places the piece the hint
finder returns, so results are reproducible for a given seed.

Example:
  woodblock autoplay --games 5 --seed 42`,
	// サーバー設定は不要なのでロガーだけを用意する
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New("warn", false)
		return err
	},
	RunE: runAutoplay,
}

func init() {
	autoplayCmd.Flags().IntVar(&autoplayGames, "games", 1, "number of games to play")
	autoplayCmd.Flags().Int64Var(&autoplaySeed, "seed", 1, "seed of the first game; game i uses seed+i")
	autoplayCmd.Flags().IntVar(&autoplayMaxMoves, "max-moves", 10000, "stop a game after this many placements")
}

// autoplayResult は1ゲーム分の結果です。
type autoplayResult struct {
	Seed         int64
	Score        int
	LinesCleared int
	Moves        int
	GameOver     bool
}

// playGame はヒントに従って配置を繰り返し、ゲームオーバーか maxMoves に達したら終了します。
func playGame(seed int64, maxMoves int, logger *zap.Logger) autoplayResult {
	session := puzzle.NewGameSession(fmt.Sprintf("autoplay-%d", seed), "autoplay", puzzle.NewSeededPieceFactory(seed), nil, logger)
	result := autoplayResult{Seed: seed}
	for result.Moves < maxMoves && !session.IsGameOver() {
		hint, ok := session.FindHint()
		if !ok {
			break
		}
		session.SelectPiece(hint.Slot)
		if !session.AttemptPlacement(hint.X, hint.Y).Placed {
			logger.Error("hint was not placeable", zap.Int64("seed", seed), zap.Any("hint", hint))
			break
		}
		result.Moves++
	}
	result.Score = session.Score
	result.LinesCleared = session.LinesCleared
	result.GameOver = session.IsGameOver()
	return result
}

func runAutoplay(cmd *cobra.Command, args []string) error {
	if autoplayGames <= 0 {
		return fmt.Errorf("--games must be positive")
	}
	out := cmd.OutOrStdout()

	best, total := 0, 0
	for i := 0; i < autoplayGames; i++ {
		r := playGame(autoplaySeed+int64(i), autoplayMaxMoves, logger)
		fmt.Fprintf(out, "seed=%d score=%d lines=%d moves=%d game_over=%t\n", r.Seed, r.Score, r.LinesCleared, r.Moves, r.GameOver)
		total += r.Score
		best = max(best, r.Score)
	}
	fmt.Fprintf(out, "games=%d best=%d average=%.1f\n", autoplayGames, best, float64(total)/float64(autoplayGames))
	return nil
}
