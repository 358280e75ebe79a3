package respond

// ChatJoinRespond chat:join 成功应答的数据体
type ChatJoinRespond struct {
	ChatId string `json:"chatId"`
}
