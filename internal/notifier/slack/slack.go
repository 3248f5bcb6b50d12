package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/crosscourt/shuttletrack/internal/metrics"
	"github.com/crosscourt/shuttletrack/internal/notifier"
	"github.com/crosscourt/shuttletrack/internal/stats"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendResultNotification(result *notifier.ResultNotification, dryRun bool) error {
	msg := s.formatResultNotification(result)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(entries []stats.LeaderboardEntry, dryRun bool) error {
	msg := s.formatLeaderboard(entries)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerStats(detail *stats.PlayerDetailedStats, query string, dryRun bool) error {
	msg := s.formatPlayerStats(detail, query)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerNotFound(query string, dryRun bool) error {
	msg := s.formatPlayerNotFound(query)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(entries []stats.LeaderboardEntry) (any, error) {
	return s.formatLeaderboard(entries), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(detail *stats.PlayerDetailedStats, query string) (any, error) {
	return s.formatPlayerStats(detail, query), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

// formatResultNotification creates the Slack message for a finished game using Block Kit.
func (s *Notifier) formatResultNotification(result *notifier.ResultNotification) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏸 Game finished! 🏸", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Details
	detailsText := fmt.Sprintf("%s — game %d", result.SessionName, result.GameNumber)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, false, false), nil, nil))

	teamA := strings.Join(result.TeamANames, " & ")
	teamB := strings.Join(result.TeamBNames, " & ")

	winner := teamA
	if result.WinningTeam == "B" {
		winner = teamB
	}
	resultText := fmt.Sprintf("Result: %s won! 🏆", winner)
	if result.TeamAScore != nil && result.TeamBScore != nil {
		resultText = fmt.Sprintf("Result: %s won! 🏆\n%s %d - %d %s",
			winner, teamA, *result.TeamAScore, *result.TeamBScore, teamB)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the group leaderboard.
func (s *Notifier) formatLeaderboard(entries []stats.LeaderboardEntry) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Group Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some games!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player Ranks
	for _, entry := range entries {
		var medal string
		switch entry.Rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s\n> ELO: %.0f | Win %%: %.1f%% (%d/%d) | Form: %s",
			entry.Rank,
			medal,
			entry.PlayerName,
			entry.EloRating,
			entry.WinRate*100,
			entry.Wins,
			entry.TotalGames,
			formString(entry.RecentForm),
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display a single player's stats.
func (s *Notifier) formatPlayerStats(detail *stats.PlayerDetailedStats, query string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏸 Stats for %s 🏸", detail.PlayerName), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	summaryText := fmt.Sprintf("Rank: %d of %d | ELO: %.0f\nRecord: %d-%d (%.1f%%) over %d games in %d sessions",
		detail.Rank,
		detail.TotalPlayers,
		detail.EloRating,
		detail.Wins,
		detail.Losses,
		detail.WinRate*100,
		detail.TotalGames,
		detail.SessionsPlayed,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", summaryText, true, false), nil, nil))

	pointsText := fmt.Sprintf("Points: %d scored, %d conceded (%+d)\nStreak: %+d (best win streak %d) | Form: %s",
		detail.PointsScored,
		detail.PointsConceded,
		detail.PointDifferential,
		detail.CurrentStreak,
		detail.BestWinStreak,
		formString(detail.RecentForm),
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", pointsText, true, false), nil, nil))

	if detail.UnluckyCount > 0 {
		unluckyText := fmt.Sprintf("💔 %d close losses (1-2 point margins)", detail.UnluckyCount)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", unluckyText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player query matches nothing.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	blocks := make([]slack.Block, 0)
	text := fmt.Sprintf("No player found matching %q.", query)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, false, false), nil, nil))
	return slack.NewBlockMessage(blocks...)
}

func formString(form []string) string {
	if len(form) == 0 {
		return "-"
	}
	return strings.Join(form, "")
}
