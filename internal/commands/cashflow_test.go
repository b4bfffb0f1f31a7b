package commands

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/cashflow/internal/ledger"
	"github.com/susu3304/cashflow/internal/settle"
	"go.uber.org/zap"
)

func sub(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:    name,
		Type:    discordgo.ApplicationCommandOptionSubCommand,
		Options: opts,
	}
}

func strOpt(name, v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: v}
}

func userOpt(name, id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionUser, Value: id}
}

func intOpt(name string, v int64) *discordgo.ApplicationCommandInteractionDataOption {
	// Discord delivers numbers as JSON floats.
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(v)}
}

func addCmd(lender, borrower string, amount int64) *discordgo.ApplicationCommandInteractionDataOption {
	return sub("add", userOpt("lender", lender), userOpt("borrower", borrower), intOpt("amount", amount))
}

func TestCashflowSession(t *testing.T) {
	c := NewCashflow(ledger.NewService(), settle.Greedy{}, zap.NewNop())
	const ch = "chan-1"

	if got := c.Execute(ch, "1", sub("list")); got != "セッションが開始されていません" {
		t.Errorf("list before start = %q", got)
	}

	got := c.Execute(ch, "1", sub("start", strOpt("members", "<@2> <@!3> 2")))
	if !strings.Contains(got, "(3名)") {
		t.Errorf("start = %q", got)
	}
	if got := c.Execute(ch, "1", sub("start", strOpt("members", "<@2>"))); got != "既に開始されています" {
		t.Errorf("second start = %q", got)
	}

	steps := []struct {
		cmd  *discordgo.ApplicationCommandInteractionDataOption
		want string
	}{
		{addCmd("1", "2", 1000), "<@1> が <@2> に 1000 円貸したことを記録しました"},
		{addCmd("2", "3", 1000), "<@2> が <@3> に 1000 円貸したことを記録しました"},
		{addCmd("1", "1", 10), "金額は正の数で、貸した人と借りた人は別のユーザーである必要があります"},
		{addCmd("1", "2", 0), "金額は正の数で、貸した人と借りた人は別のユーザーである必要があります"},
		{addCmd("1", "9", 10), "参加者ではないユーザーが指定されています"},
	}
	for _, st := range steps {
		if got := c.Execute(ch, "1", st.cmd); got != st.want {
			t.Errorf("add = %q, want %q", got, st.want)
		}
	}

	list := c.Execute(ch, "1", sub("list"))
	if !strings.HasPrefix(list, "記録 (2件)") {
		t.Errorf("list = %q", list)
	}

	settled := c.Execute(ch, "1", sub("settle"))
	want := "支払タスク (greedy):\n<@3> → <@1>: 1000 円\n"
	if settled != want {
		t.Errorf("settle = %q, want %q", settled, want)
	}

	flow := c.Execute(ch, "1", sub("settle", strOpt("strategy", "flow")))
	wantFlow := "支払タスク (flow):\n<@3> → <@1>: 1000 円\n総フロー: 1000 円 / 総コスト: 1000\n"
	if flow != wantFlow {
		t.Errorf("flow settle = %q, want %q", flow, wantFlow)
	}

	fixed := c.Execute(ch, "1", sub("settle", strOpt("strategy", "fixedflow")))
	if fixed != "総フロー: 1000 円 / 総コスト: 1000" {
		t.Errorf("fixedflow settle = %q", fixed)
	}
	if got := c.Execute(ch, "1", sub("settle", strOpt("strategy", "magic"))); !strings.HasPrefix(got, "未知のアルゴリズム") {
		t.Errorf("unknown strategy = %q", got)
	}

	bal := c.Execute(ch, "1", sub("balances"))
	for _, line := range []string{"<@1>: +1000 円", "<@2>: +0 円", "<@3>: -1000 円"} {
		if !strings.Contains(bal, line) {
			t.Errorf("balances missing %q in %q", line, bal)
		}
	}

	if got := c.Execute(ch, "1", sub("undo")); got != "最後の記録を取り消しました" {
		t.Errorf("undo = %q", got)
	}
	_ = c.Execute(ch, "1", sub("undo"))
	if got := c.Execute(ch, "1", sub("undo")); got != "取り消す記録がありません" {
		t.Errorf("empty undo = %q", got)
	}
	if got := c.Execute(ch, "1", sub("settle")); got != "精算は不要です" {
		t.Errorf("settle after undo = %q", got)
	}

	if got := c.Execute(ch, "1", sub("stop")); got != "セッションを終了しました" {
		t.Errorf("stop = %q", got)
	}
	if got := c.Execute(ch, "1", sub("stop")); got != "セッションが存在しません" {
		t.Errorf("second stop = %q", got)
	}
}

func TestParseMentionIDs(t *testing.T) {
	got := parseMentionIDs("<@123> <@!456> 789 hello <@123>")
	want := []string{"123", "456", "789"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseMentionIDs() = %v, want %v", got, want)
	}
}

func TestGetCommandsListsStrategies(t *testing.T) {
	cmds := GetCommands()
	if len(cmds) != 1 || cmds[0].Name != "cashflow" {
		t.Fatalf("GetCommands() = %+v", cmds)
	}
	for _, opt := range cmds[0].Options {
		if opt.Name != "settle" {
			continue
		}
		if n := len(opt.Options[0].Choices); n != len(settle.Names()) {
			t.Errorf("settle strategy choices = %d, want %d", n, len(settle.Names()))
		}
		return
	}
	t.Error("settle subcommand not registered")
}

func TestCashflowRejectsOverflowingAmount(t *testing.T) {
	c := NewCashflow(ledger.NewService(), settle.Greedy{}, zap.NewNop())
	const ch = "chan-big"
	c.Execute(ch, "1", sub("start", strOpt("members", "<@2>")))

	if got := c.Execute(ch, "1", addCmd("1", "2", 1<<62)); !strings.HasSuffix(got, "貸したことを記録しました") {
		t.Fatalf("first add = %q", got)
	}
	if got := c.Execute(ch, "1", addCmd("1", "2", 1<<62)); got != "金額が大きすぎます" {
		t.Errorf("overflowing add = %q", got)
	}
	if list := c.Execute(ch, "1", sub("list")); !strings.HasPrefix(list, "記録 (1件)") {
		t.Errorf("list = %q", list)
	}
}

func TestCashflowReadsSurviveRestarts(t *testing.T) {
	c := NewCashflow(ledger.NewService(), settle.Greedy{}, zap.NewNop())
	const ch = "chan-race"

	done := make(chan struct{})
	panics := make(chan string, 16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panics <- fmt.Sprint(r)
				}
			}()
			for {
				select {
				case <-done:
					return
				default:
				}
				c.Execute(ch, "1", sub(name))
			}
		}([]string{"list", "balances"}[i%2])
	}

	for i := 0; i < 200; i++ {
		c.Execute(ch, "1", sub("start", strOpt("members", "<@2> <@3> <@4>")))
		c.Execute(ch, "1", addCmd("4", "3", 5))
		c.Execute(ch, "1", sub("stop"))
		c.Execute(ch, "1", sub("start"))
		c.Execute(ch, "1", sub("stop"))
	}
	close(done)
	wg.Wait()
	close(panics)
	for p := range panics {
		t.Errorf("handler panicked: %s", p)
	}
}
