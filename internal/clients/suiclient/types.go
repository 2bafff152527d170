package suiclient

import (
	"encoding/json"
)

type TransactionPage struct {
	Data        []TransactionBlock
	NextCursor  json.RawMessage
	HasNextPage bool
	// Skipped counts records of the page that could not be decoded
	Skipped int
}

type EventPage struct {
	Data        []Event
	NextCursor  json.RawMessage
	HasNextPage bool
	Skipped     int
}

// rawPage is the shared envelope of the paginated query endpoints. Records
// are decoded one by one so that a malformed entry only drops itself.
type rawPage struct {
	Data        []json.RawMessage `json:"data"`
	NextCursor  json.RawMessage   `json:"nextCursor"`
	HasNextPage bool              `json:"hasNextPage"`
}

type TransactionBlock struct {
	Digest         string               `json:"digest"`
	Transaction    *TransactionEnvelope `json:"transaction"`
	Events         []Event              `json:"events"`
	BalanceChanges []BalanceChange      `json:"balanceChanges"`
	TimestampMs    string               `json:"timestampMs"`
}

type TransactionEnvelope struct {
	Data *TransactionData `json:"data"`
}

type TransactionData struct {
	Sender      string           `json:"sender"`
	Transaction *TransactionKind `json:"transaction"`
}

// TransactionKind holds the programmable transaction body.
type TransactionKind struct {
	Kind         string      `json:"kind"`
	Inputs       []CallInput `json:"inputs"`
	Transactions []Command   `json:"transactions"`
}

// Command is one programmable transaction command. Only MoveCall is decoded;
// other command kinds leave it nil.
type Command struct {
	MoveCall *MoveCall `json:"MoveCall"`
}

type MoveCall struct {
	Package  string `json:"package"`
	Module   string `json:"module"`
	Function string `json:"function"`
	// Arguments are either the string "GasCoin" or single key objects such as
	// {"Input":0}, {"Result":1} or {"NestedResult":[1,0]}.
	Arguments []json.RawMessage `json:"arguments"`
}

type CallInput struct {
	Type      string          `json:"type"`
	ValueType string          `json:"valueType"`
	Value     json.RawMessage `json:"value"`
}

type EventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

type Event struct {
	ID          EventID         `json:"id"`
	Type        string          `json:"type"`
	Sender      string          `json:"sender"`
	ParsedJSON  json.RawMessage `json:"parsedJson"`
	TimestampMs string          `json:"timestampMs"`
}

// Fields returns the top level fields of the event payload, or nil when the
// payload is not a JSON object.
func (e *Event) Fields() map[string]json.RawMessage {
	if len(e.ParsedJSON) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e.ParsedJSON, &fields); err != nil {
		return nil
	}
	return fields
}

type BalanceChange struct {
	Owner    json.RawMessage `json:"owner"`
	CoinType string          `json:"coinType"`
	Amount   string          `json:"amount"`
}

// Sender returns the transaction sender or an empty string.
func (tx *TransactionBlock) Sender() string {
	if tx == nil || tx.Transaction == nil || tx.Transaction.Data == nil {
		return ""
	}
	return tx.Transaction.Data.Sender
}

// Programmable returns the programmable transaction body or nil.
func (tx *TransactionBlock) Programmable() *TransactionKind {
	if tx == nil || tx.Transaction == nil || tx.Transaction.Data == nil {
		return nil
	}
	return tx.Transaction.Data.Transaction
}

type transactionFilter struct {
	MoveFunction moveFunctionFilter `json:"MoveFunction"`
}

type moveFunctionFilter struct {
	Package  string `json:"package"`
	Module   string `json:"module"`
	Function string `json:"function"`
}

type transactionQuery struct {
	Filter  transactionFilter  `json:"filter"`
	Options transactionOptions `json:"options"`
}

type transactionOptions struct {
	ShowInput          bool `json:"showInput"`
	ShowEvents         bool `json:"showEvents"`
	ShowBalanceChanges bool `json:"showBalanceChanges"`
}

type eventFilter struct {
	MoveEventType string `json:"MoveEventType"`
}
