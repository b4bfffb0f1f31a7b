package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/cashflow/internal/ledger"
	"github.com/susu3304/cashflow/internal/settle"
	"go.uber.org/zap"
)

var errNotMember = errors.New("not a participant")

// Cashflow serves the /cashflow command. Each channel has at most one book, keyed by
// channel ID; participants are stored by Discord user ID.
type Cashflow struct {
	svc      *ledger.Service
	strategy settle.Strategy
	logger   *zap.Logger
}

func NewCashflow(svc *ledger.Service, strategy settle.Strategy, logger *zap.Logger) *Cashflow {
	return &Cashflow{svc: svc, strategy: strategy, logger: logger}
}

func (c *Cashflow) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		respondText(s, i, "サブコマンドが指定されていません")
		return
	}
	respondText(s, i, c.Execute(i.ChannelID, interactionUserID(i), data.Options[0]))
}

// Execute runs one subcommand and returns the reply text.
func (c *Cashflow) Execute(channelID, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) string {
	log := c.logger.With(zap.String("channel_id", channelID), zap.String("subcommand", sub.Name))

	switch sub.Name {
	case "start":
		members := getStringOption(sub.Options, "members")
		var ids []string
		if userID != "" {
			ids = append(ids, userID)
		}
		if members != nil {
			ids = unique(append(ids, parseMentionIDs(*members)...))
		}
		if err := c.svc.Start(channelID, userID, ids); err != nil {
			if errors.Is(err, ledger.ErrSessionExists) {
				return "既に開始されています"
			}
			log.Error("failed to start session", zap.Error(err))
			return "セッションを開始できませんでした"
		}
		log.Info("session started", zap.Int("participants", len(ids)))
		var b strings.Builder
		fmt.Fprintf(&b, "このチャンネルでセッションを開始しました (%d名)\n", len(ids))
		for idx, id := range ids {
			fmt.Fprintf(&b, "%d: %s\n", idx, mention(id))
		}
		return b.String()

	case "add":
		return c.add(channelID, sub, log)

	case "list":
		var txs []settle.Transaction
		var ids []string
		err := c.svc.View(channelID, func(b *ledger.Book) error {
			txs, ids = b.Transactions(), memberIDs(b)
			return nil
		})
		if err != nil {
			return sessionError(err)
		}
		if len(txs) == 0 {
			return "記録はありません"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "記録 (%d件):\n", len(txs))
		for _, tx := range txs {
			fmt.Fprintf(&b, "%s → %s: %d 円\n", mention(ids[tx.Lender]), mention(ids[tx.Borrower]), tx.Amount)
		}
		return b.String()

	case "undo":
		if err := c.svc.Undo(channelID); err != nil {
			if errors.Is(err, ledger.ErrNothingToUndo) {
				return "取り消す記録がありません"
			}
			return sessionError(err)
		}
		return "最後の記録を取り消しました"

	case "balances":
		var balances []int64
		var ids []string
		err := c.svc.View(channelID, func(b *ledger.Book) error {
			var err error
			balances, err = b.Balances()
			ids = memberIDs(b)
			return err
		})
		if err != nil {
			return sessionError(err)
		}
		var b strings.Builder
		b.WriteString("収支:\n")
		for idx, bal := range balances {
			fmt.Fprintf(&b, "%s: %+d 円\n", mention(ids[idx]), bal)
		}
		return b.String()

	case "settle":
		strategy := c.strategy
		if name := getStringOption(sub.Options, "strategy"); name != nil {
			s, err := settle.Lookup(*name)
			if err != nil {
				return fmt.Sprintf("未知のアルゴリズムです: %s", *name)
			}
			strategy = s
		}
		res, err := c.svc.Settle(channelID, strategy)
		if err != nil {
			if errors.Is(err, settle.ErrPrecondition) {
				return fmt.Sprintf("%s は参加者が2人以上必要です", strategy.Name())
			}
			log.Error("settlement failed", zap.String("strategy", strategy.Name()), zap.Error(err))
			return sessionError(err)
		}
		log.Info("settled", zap.String("strategy", strategy.Name()), zap.Int("payments", len(res.Entries)))
		return renderSettlement(res)

	case "stop":
		if err := c.svc.Stop(channelID); err != nil {
			return "セッションが存在しません"
		}
		log.Info("session stopped")
		return "セッションを終了しました"

	default:
		return "未知のサブコマンドです"
	}
}

func (c *Cashflow) add(channelID string, sub *discordgo.ApplicationCommandInteractionDataOption, log *zap.Logger) string {
	lenderID := getUserOption(sub.Options, "lender")
	borrowerID := getUserOption(sub.Options, "borrower")
	amount := getIntOption(sub.Options, "amount")
	if lenderID == "" || borrowerID == "" || amount == nil {
		return "lender, borrower, amount の指定が必要です"
	}

	// Index lookup and the write share one lock, so a restarted session never receives
	// indices resolved against its predecessor.
	err := c.svc.View(channelID, func(b *ledger.Book) error {
		ids := memberIDs(b)
		lender, borrower := indexOf(ids, lenderID), indexOf(ids, borrowerID)
		if lender < 0 || borrower < 0 {
			return errNotMember
		}
		return b.AddDebt(lender, borrower, *amount)
	})
	switch {
	case err == nil:
	case errors.Is(err, errNotMember):
		return "参加者ではないユーザーが指定されています"
	case errors.Is(err, settle.ErrValidation):
		return "金額は正の数で、貸した人と借りた人は別のユーザーである必要があります"
	case errors.Is(err, settle.ErrOverflow):
		return "金額が大きすぎます"
	default:
		log.Error("failed to add debt", zap.Error(err))
		return sessionError(err)
	}
	return fmt.Sprintf("%s が %s に %d 円貸したことを記録しました", mention(lenderID), mention(borrowerID), *amount)
}

// memberIDs lists the Discord user IDs of b's participants in index order.
func memberIDs(b *ledger.Book) []string {
	ps := b.Participants()
	ids := make([]string, len(ps))
	for _, p := range ps {
		ids[p.Index] = p.Name
	}
	return ids
}

func renderSettlement(res *ledger.Settlement) string {
	if res.Plan.Strategy == (settle.FixedFlow{}).Name() {
		return fmt.Sprintf("総フロー: %d 円 / 総コスト: %d", res.Plan.TotalFlow, res.Plan.TotalCost)
	}
	if len(res.Entries) == 0 {
		return "精算は不要です"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "支払タスク (%s):\n", res.Plan.Strategy)
	for _, e := range res.Entries {
		fmt.Fprintf(&b, "%s → %s: %d 円\n", mention(e.Payer), mention(e.Payee), e.Amount)
	}
	if res.Plan.Strategy == (settle.Flow{}).Name() {
		fmt.Fprintf(&b, "総フロー: %d 円 / 総コスト: %d\n", res.Plan.TotalFlow, res.Plan.TotalCost)
	}
	return b.String()
}

func sessionError(err error) string {
	if errors.Is(err, ledger.ErrNoSession) {
		return "セッションが開始されていません"
	}
	return "処理に失敗しました"
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func mention(id string) string {
	return fmt.Sprintf("<@%s>", id)
}

func indexOf(ids []string, id string) int {
	for idx, v := range ids {
		if v == id {
			return idx
		}
	}
	return -1
}
