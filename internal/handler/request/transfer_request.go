package request

// TransferRequest is the JSON body of POST /api/v1/transfer. Amount is in SOL
// and kept as a string so no precision is lost before conversion.
type TransferRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Amount    string `json:"amount" binding:"required,positive_decimal"`
}

// TransferForm is the form post from the page. Empty or invalid values are
// accepted here and rejected by the send guard.
type TransferForm struct {
	Recipient string `form:"recipient"`
	Amount    string `form:"amount"`
}
