// Package rpc serves the ledger over Connect. Messages are plain Go structs carried by a
// JSON codec, so any Connect client that speaks application/json can call it.
package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

const (
	// GroupServiceName is the fully-qualified name of the GroupService service.
	GroupServiceName = "splitright.v1.GroupService"
	// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
	ExpenseServiceName = "splitright.v1.ExpenseService"
)

// Procedure paths, as sent in the HTTP request path.
const (
	GroupServiceCreateGroupProcedure    = "/splitright.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure       = "/splitright.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure     = "/splitright.v1.GroupService/ListGroups"
	GroupServiceUpdateGroupProcedure    = "/splitright.v1.GroupService/UpdateGroup"
	GroupServiceDeleteGroupProcedure    = "/splitright.v1.GroupService/DeleteGroup"
	GroupServiceGetBalancesProcedure    = "/splitright.v1.GroupService/GetBalances"
	GroupServiceGetSettlementsProcedure = "/splitright.v1.GroupService/GetSettlements"

	ExpenseServiceCreateExpenseProcedure = "/splitright.v1.ExpenseService/CreateExpense"
	ExpenseServiceListExpensesProcedure  = "/splitright.v1.ExpenseService/ListExpenses"
	ExpenseServiceDeleteExpenseProcedure = "/splitright.v1.ExpenseService/DeleteExpense"
)

// jsonCodec replaces Connect's default protojson codec under the same name.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(message); err != nil {
		return fmt.Errorf("decode %T: %w", message, err)
	}
	return nil
}

// codecOption installs the JSON codec on a handler or client.
func codecOption() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
