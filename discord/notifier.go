package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/tnicklin/keystonescan/keystone"
	"github.com/tnicklin/keystonescan/logger"
)

// maxMessageLen is Discord's limit on message content.
const maxMessageLen = 2000

// maxSkippedLen bounds the skipped character list in the summary header.
const maxSkippedLen = 300

// Summary describes a finished scan.
type Summary struct {
	ScanID     string
	Finished   time.Time
	Characters int
	Skipped    []string
	Weekly     []keystone.WeeklyEntry
}

// Notifier posts scan summaries.
type Notifier interface {
	Notify(ctx context.Context, s Summary) error
}

var (
	_ Notifier = (*DefaultNotifier)(nil)
	_ Notifier = Nop{}
)

// Nop discards summaries.
type Nop struct{}

func (Nop) Notify(context.Context, Summary) error { return nil }

// sender is the part of discordgo.Session used to post messages.
type sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DefaultNotifier struct {
	session   sender
	channelID string
	rewards   VaultRewardTable
	logger    logger.Logger
}

type Params struct {
	Config  Config
	Rewards *VaultRewardTable
	Logger  logger.Logger
}

// New creates a notifier that posts over the Discord REST API. No gateway
// connection is opened.
func New(p Params) (*DefaultNotifier, error) {
	if !p.Config.Enabled() {
		return nil, errors.New("discord: token and channel_id are required")
	}
	session, err := discordgo.New("Bot " + p.Config.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return newNotifier(session, p), nil
}

func newNotifier(s sender, p Params) *DefaultNotifier {
	log := p.Logger
	if log == nil {
		log = logger.NewNop()
	}
	rewards := VaultRewards
	if p.Rewards != nil {
		rewards = *p.Rewards
	}
	return &DefaultNotifier{
		session:   s,
		channelID: p.Config.ChannelID,
		rewards:   rewards,
		logger:    log,
	}
}

func (n *DefaultNotifier) Notify(ctx context.Context, s Summary) error {
	for i, msg := range FormatSummary(s, n.rewards) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := n.session.ChannelMessageSend(n.channelID, msg, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("post summary part %d: %w", i+1, err)
		}
	}
	n.logger.InfoW("scan summary posted", "scan_id", s.ScanID, "channel", n.channelID)
	return nil
}

// FormatSummary renders s as one or more Discord messages, each under the
// message length limit.
func FormatSummary(s Summary, rewards VaultRewardTable) []string {
	var header strings.Builder
	header.WriteString(fmt.Sprintf("**Keystone scan** %s: %d characters", s.Finished.UTC().Format("Jan 2 15:04 MST"), s.Characters))
	if len(s.Skipped) > 0 {
		header.WriteString(fmt.Sprintf(", %d skipped", len(s.Skipped)))
		if list := skippedList(s.Skipped); list != "" {
			header.WriteString(" (" + list + ")")
		}
	}
	header.WriteString("\n")

	if len(s.Weekly) == 0 {
		return []string{strings.TrimSuffix(header.String(), "\n")}
	}

	maxNameLen := 0
	for _, e := range s.Weekly {
		if len(e.Name) > maxNameLen {
			maxNameLen = len(e.Name)
		}
	}

	lines := make([]string, 0, len(s.Weekly))
	for _, e := range s.Weekly {
		lines = append(lines, reportLine(e, maxNameLen, rewards))
	}

	const open, closing = "```ansi\n", "```"
	var (
		out []string
		sb  strings.Builder
	)
	sb.WriteString(header.String())
	sb.WriteString(open)
	for _, line := range lines {
		if sb.Len()+len(line)+len(closing) > maxMessageLen {
			sb.WriteString(closing)
			out = append(out, sb.String())
			sb.Reset()
			sb.WriteString(open)
		}
		sb.WriteString(line)
	}
	sb.WriteString(closing)
	return append(out, sb.String())
}

// skippedList joins names up to maxSkippedLen bytes and folds the rest
// into an "and N more" tail.
func skippedList(names []string) string {
	var sb strings.Builder
	shown := 0
	for ; shown < len(names); shown++ {
		size := sb.Len() + len(names[shown])
		if shown > 0 {
			size += len(", ")
		}
		if rest := len(names) - shown - 1; rest > 0 {
			size += len(moreTail(rest))
		}
		if size > maxSkippedLen {
			break
		}
		if shown > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(names[shown])
	}
	if shown > 0 && shown < len(names) {
		sb.WriteString(moreTail(len(names) - shown))
	}
	return sb.String()
}

func moreTail(n int) string {
	return fmt.Sprintf(" and %d more", n)
}

func reportLine(e keystone.WeeklyEntry, width int, rewards VaultRewardTable) string {
	done := 0
	for _, level := range e.Dungeons {
		if level > 0 {
			done++
		}
	}
	slots := make([]string, 0, len(VaultSlots))
	for _, idx := range VaultSlots {
		slots = append(slots, rewards.Slot(e.Dungeons, idx, true))
	}
	return fmt.Sprintf("%-*s: %d keys %s\n", width, e.Name, done, strings.Join(slots, " "))
}
