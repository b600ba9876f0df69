package models

import "strings"

const (
	MoneyTypeCash = "Cash"
	MoneyTypeBank = "Bank"

	EndpointCash = "cash"
	EndpointBank = "bank"
)

// AdjustmentRequest adds money to or removes money from a single account.
type AdjustmentRequest struct {
	Type      string `json:"type" validate:"required,oneof=add reduce"`
	MoneyType string `json:"money_type" validate:"required,oneof=Cash Bank"`
	AccountID *int64 `json:"account_id,omitempty" validate:"required_if=MoneyType Bank"`
	Date      Date   `json:"date"`
	Amount    Amount `json:"amount"`
	Remarks   string `json:"remarks,omitempty" validate:"max=500"`
}

// Normalize canonicalises casing so "CASH", "cash" and "Cash" are equivalent.
func (r *AdjustmentRequest) Normalize() {
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	switch strings.ToLower(strings.TrimSpace(r.MoneyType)) {
	case "cash":
		r.MoneyType = MoneyTypeCash
	case "bank":
		r.MoneyType = MoneyTypeBank
	}
	if r.MoneyType == MoneyTypeCash {
		r.AccountID = nil
	}
	r.Remarks = strings.TrimSpace(r.Remarks)
}

// TransferRequest moves money between cash and a bank account, or between
// two bank accounts.
type TransferRequest struct {
	From          string `json:"from" validate:"required,oneof=cash bank"`
	FromAccountID *int64 `json:"from_account_id,omitempty" validate:"required_if=From bank"`
	To            string `json:"to" validate:"required,oneof=cash bank"`
	ToAccountID   *int64 `json:"to_account_id,omitempty" validate:"required_if=To bank"`
	Amount        Amount `json:"amount"`
	Date          Date   `json:"date"`
	Remarks       string `json:"remarks,omitempty" validate:"max=500"`
}

func (r *TransferRequest) Normalize() {
	r.From = strings.ToLower(strings.TrimSpace(r.From))
	r.To = strings.ToLower(strings.TrimSpace(r.To))
	if r.From == EndpointCash {
		r.FromAccountID = nil
	}
	if r.To == EndpointCash {
		r.ToAccountID = nil
	}
	r.Remarks = strings.TrimSpace(r.Remarks)
}

// SameEndpoint reports whether source and destination resolve to the same
// account as submitted.
func (r *TransferRequest) SameEndpoint() bool {
	if r.From != r.To {
		return false
	}
	if r.From == EndpointCash {
		return true
	}
	return r.FromAccountID != nil && r.ToAccountID != nil && *r.FromAccountID == *r.ToAccountID
}

// CreateBankAccountRequest registers a new bank account. The bank detail
// fields form a group: supplying any of them requires all mandatory ones.
type CreateBankAccountRequest struct {
	AccountName          string `json:"account_name" validate:"required,max=100"`
	AccountType          string `json:"account_type,omitempty" validate:"omitempty,eq=Bank"`
	OpeningBalance       Amount `json:"opening_balance"`
	AsOfDate             Date   `json:"as_of_date"`
	BankDetailsEnabled   bool   `json:"bank_details_enabled"`
	BankAccountNumber    string `json:"bank_account_number,omitempty" validate:"required_if=BankDetailsEnabled true,omitempty,numeric,min=6,max=20"`
	ConfirmAccountNumber string `json:"confirm_bank_account_number,omitempty" validate:"required_if=BankDetailsEnabled true,omitempty,eqfield=BankAccountNumber"`
	IFSCCode             string `json:"ifsc_code,omitempty" validate:"required_if=BankDetailsEnabled true,omitempty,ifsc"`
	BankBranchName       string `json:"bank_branch_name,omitempty" validate:"required_if=BankDetailsEnabled true,omitempty,max=100"`
	AccountHolderName    string `json:"account_holder_name,omitempty" validate:"required_if=BankDetailsEnabled true,omitempty,max=100"`
	UPIID                string `json:"upi_id,omitempty" validate:"omitempty,upi"`
}

func (r *CreateBankAccountRequest) Normalize() {
	r.AccountName = strings.TrimSpace(r.AccountName)
	if strings.EqualFold(r.AccountType, MoneyTypeBank) {
		r.AccountType = MoneyTypeBank
	}
	r.BankAccountNumber = strings.TrimSpace(r.BankAccountNumber)
	r.ConfirmAccountNumber = strings.TrimSpace(r.ConfirmAccountNumber)
	r.IFSCCode = strings.ToUpper(strings.TrimSpace(r.IFSCCode))
	r.BankBranchName = strings.TrimSpace(r.BankBranchName)
	r.AccountHolderName = strings.TrimSpace(r.AccountHolderName)
	r.UPIID = strings.TrimSpace(r.UPIID)

	if r.BankAccountNumber != "" || r.ConfirmAccountNumber != "" || r.IFSCCode != "" ||
		r.BankBranchName != "" || r.AccountHolderName != "" || r.UPIID != "" {
		r.BankDetailsEnabled = true
	}
}

// BankDetails returns the detail group, or nil when it was not supplied.
func (r *CreateBankAccountRequest) BankDetails() *BankDetails {
	if !r.BankDetailsEnabled {
		return nil
	}
	return &BankDetails{
		AccountNumber:     r.BankAccountNumber,
		IFSCCode:          r.IFSCCode,
		BranchName:        r.BankBranchName,
		AccountHolderName: r.AccountHolderName,
		UPIID:             r.UPIID,
	}
}

// AdjustmentResult is returned after an adjustment is recorded or replayed.
type AdjustmentResult struct {
	Success     bool              `json:"success"`
	Replayed    bool              `json:"replayed"`
	Transaction LedgerTransaction `json:"transaction"`
}

// TransferResult carries both legs of a recorded transfer.
type TransferResult struct {
	Success      bool                `json:"success"`
	Replayed     bool                `json:"replayed"`
	TransferID   string              `json:"transfer_id"`
	Transactions []LedgerTransaction `json:"transactions"`
}
