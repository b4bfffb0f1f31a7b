package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/cashflow/internal/settle"
)

func GetCommands() []*discordgo.ApplicationCommand {
	var strategyChoices []*discordgo.ApplicationCommandOptionChoice
	for _, name := range settle.Names() {
		strategyChoices = append(strategyChoices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:         "cashflow",
			Description:  "貸し借りを記録して精算します",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "このチャンネルで精算セッションを開始します",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "members",
							Description: "参加者のメンション (実行者は自動で追加)",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "貸し借りを記録します",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "lender",
							Description: "貸した人",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "borrower",
							Description: "借りた人",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "金額 (円)",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "記録された貸し借りを表示します",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "undo",
					Description: "最後の記録を取り消します",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "balances",
					Description: "各参加者の収支を表示します",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "settle",
					Description: "最小化した支払い一覧を表示します",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "strategy",
							Description: "精算アルゴリズム",
							Choices:     strategyChoices,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stop",
					Description: "セッションを終了します",
				},
			},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
