package logic

type SubmitReq struct {
	SenderId    string `json:"senderId"`
	RecipientId string `json:"recipientId"`
}

type RequestUri struct {
	Id int64 `uri:"id" binding:"required"`
}

type TransitionResp struct {
	Id      int64  `json:"id,string"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
