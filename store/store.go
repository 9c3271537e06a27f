// Package store keeps savings accounts in a directory of JSON files:
//
//	accounts.json                 list of accounts
//	transactions/<account>.jsonl  ledger, one transaction per line
//	annual-values/<account>.json  year end checkpoints
//	balances/<account>.json       dated balances
//	deposits/<account>.json       employee savings deposits
//
// Files are rewritten atomically and read again on every call.
package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/etnz/savings"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a transaction or deposit id is unknown.
var ErrNotFound = errors.New("not found")

// Dir is a savings data directory. It implements savings.Store.
type Dir struct {
	path string
	mu   sync.RWMutex

	// NewID generates ids of new transactions and deposits.
	NewID func() string
}

var _ savings.Store = (*Dir)(nil)

// Open opens the data directory at path, creating it if needed.
func Open(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("could not create data directory %q: %w", path, err)
	}
	return &Dir{path: path, NewID: uuid.NewString}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

func (d *Dir) accountsFile() string { return filepath.Join(d.path, "accounts.json") }

func (d *Dir) file(kind, id, ext string) string { return filepath.Join(d.path, kind, id+ext) }

// readJSON decodes the file into v. A missing file leaves v untouched.
func readJSON(name string, v any) error {
	b, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("could not decode %q: %w", name, err)
	}
	return nil
}

// writeFile replaces the file content atomically.
func writeFile(name string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), name)
}

func writeJSON(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFile(name, append(b, '\n')); err != nil {
		return fmt.Errorf("could not write %q: %w", name, err)
	}
	return nil
}

func (d *Dir) readAccounts() ([]accountRecord, error) {
	var records []accountRecord
	if err := readJSON(d.accountsFile(), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Accounts returns all accounts, in file order.
func (d *Dir) Accounts(ctx context.Context) ([]savings.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	records, err := d.readAccounts()
	if err != nil {
		return nil, err
	}
	accounts := make([]savings.Account, 0, len(records))
	for _, r := range records {
		accounts = append(accounts, r.account())
	}
	return accounts, nil
}

func (d *Dir) account(id string) (savings.Account, error) {
	records, err := d.readAccounts()
	if err != nil {
		return savings.Account{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r.account(), nil
		}
	}
	return savings.Account{}, fmt.Errorf("account %q: %w", id, savings.ErrAccountNotFound)
}

// Account returns the account id.
func (d *Dir) Account(ctx context.Context, id string) (savings.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.account(id)
}

// SaveAccount creates or replaces an account. Setting it as the default
// clears the flag on the others.
func (d *Dir) SaveAccount(ctx context.Context, a savings.Account) error {
	if a.ID == "" {
		return errors.New("account id is required")
	}
	if _, err := savings.ParseAccountKind(string(a.Kind)); err != nil {
		return err
	}
	if err := savings.ValidateCurrency(a.Currency); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	records, err := d.readAccounts()
	if err != nil {
		return err
	}
	r := newAccountRecord(a)
	if a.Default {
		for i := range records {
			records[i].Default = false
		}
	}
	if i := slices.IndexFunc(records, func(x accountRecord) bool { return x.ID == a.ID }); i >= 0 {
		records[i] = r
	} else {
		records = append(records, r)
	}
	return writeJSON(d.accountsFile(), records)
}

// transactions reads the ledger of account a.
func (d *Dir) transactions(a savings.Account) ([]savings.Transaction, error) {
	name := d.file("transactions", a.ID, ".jsonl")
	b, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var txs []savings.Transaction
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}
		var r transactionRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("could not decode %s:%d: %w", name, n, err)
		}
		txs = append(txs, r.transaction(a.Currency))
	}
	return txs, scanner.Err()
}

func (d *Dir) writeTransactions(a savings.Account, txs []savings.Transaction) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, t := range txs {
		if err := enc.Encode(newTransactionRecord(t)); err != nil {
			return err
		}
	}
	name := d.file("transactions", a.ID, ".jsonl")
	if err := writeFile(name, buf.Bytes()); err != nil {
		return fmt.Errorf("could not write %q: %w", name, err)
	}
	return nil
}

// Transactions returns the ledger of account id, in recording order.
func (d *Dir) Transactions(ctx context.Context, id string) ([]savings.Transaction, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, err := d.account(id)
	if err != nil {
		return nil, err
	}
	return d.transactions(a)
}

// AddTransaction validates t, gives it a new id if it has none, and appends
// it to the ledger of account id.
func (d *Dir) AddTransaction(ctx context.Context, id string, t savings.Transaction) (savings.Transaction, error) {
	if err := savings.ValidateTransaction(t); err != nil {
		return t, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	a, err := d.account(id)
	if err != nil {
		return t, err
	}
	if err := savings.CheckCurrency([]savings.Transaction{t}, a.Currency); err != nil {
		return t, fmt.Errorf("account %q: %w", id, err)
	}
	txs, err := d.transactions(a)
	if err != nil {
		return t, err
	}
	if t.ID == "" {
		t.ID = d.NewID()
	}
	if slices.ContainsFunc(txs, func(x savings.Transaction) bool { return x.ID == t.ID }) {
		return t, fmt.Errorf("transaction %q already exists", t.ID)
	}
	return t, d.writeTransactions(a, append(txs, t))
}

// ReplaceTransaction replaces the transaction with the same id in the ledger of account id.
func (d *Dir) ReplaceTransaction(ctx context.Context, id string, t savings.Transaction) error {
	if err := savings.ValidateTransaction(t); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	a, err := d.account(id)
	if err != nil {
		return err
	}
	if err := savings.CheckCurrency([]savings.Transaction{t}, a.Currency); err != nil {
		return fmt.Errorf("account %q: %w", id, err)
	}
	txs, err := d.transactions(a)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(txs, func(x savings.Transaction) bool { return x.ID == t.ID })
	if i < 0 {
		return fmt.Errorf("transaction %q: %w", t.ID, ErrNotFound)
	}
	txs[i] = t
	return d.writeTransactions(a, txs)
}

// AnnualValues returns the year end checkpoints of account id.
func (d *Dir) AnnualValues(ctx context.Context, id string) ([]savings.AnnualValue, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, err := d.account(id)
	if err != nil {
		return nil, err
	}
	var records []annualValueRecord
	if err := readJSON(d.file("annual-values", id, ".json"), &records); err != nil {
		return nil, err
	}
	values := make([]savings.AnnualValue, 0, len(records))
	for _, r := range records {
		values = append(values, r.annualValue(a.Currency))
	}
	return values, nil
}

// SetAnnualValue records the checkpoint of a year, replacing any previous one.
func (d *Dir) SetAnnualValue(ctx context.Context, id string, v savings.AnnualValue) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.account(id); err != nil {
		return err
	}
	name := d.file("annual-values", id, ".json")
	var records []annualValueRecord
	if err := readJSON(name, &records); err != nil {
		return err
	}
	records = slices.DeleteFunc(records, func(r annualValueRecord) bool { return r.Year == v.Year })
	records = append(records, newAnnualValueRecord(v))
	slices.SortFunc(records, func(a, b annualValueRecord) int { return a.Year - b.Year })
	return writeJSON(name, records)
}

// Balances returns the balance records of account id, sorted by date.
func (d *Dir) Balances(ctx context.Context, id string) ([]savings.BalanceRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, err := d.account(id)
	if err != nil {
		return nil, err
	}
	var records []balanceRecord
	if err := readJSON(d.file("balances", id, ".json"), &records); err != nil {
		return nil, err
	}
	balances := make([]savings.BalanceRecord, 0, len(records))
	for _, r := range records {
		balances = append(balances, savings.BalanceRecord{Date: r.Date, Balance: savings.M(r.Balance, a.Currency)})
	}
	slices.SortStableFunc(balances, func(a, b savings.BalanceRecord) int { return a.Date.Compare(b.Date) })
	return balances, nil
}

// AddBalance records a balance, replacing the one of the same day.
func (d *Dir) AddBalance(ctx context.Context, id string, b savings.BalanceRecord) error {
	if b.Date.IsZero() {
		return errors.New("balance date is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.account(id); err != nil {
		return err
	}
	name := d.file("balances", id, ".json")
	var records []balanceRecord
	if err := readJSON(name, &records); err != nil {
		return err
	}
	records = slices.DeleteFunc(records, func(r balanceRecord) bool { return r.Date == b.Date })
	records = append(records, balanceRecord{Date: b.Date, Balance: b.Balance.Decimal()})
	slices.SortFunc(records, func(a, b balanceRecord) int { return a.Date.Compare(b.Date) })
	return writeJSON(name, records)
}

func (d *Dir) readDeposits(id string) ([]depositRecord, error) {
	var records []depositRecord
	if err := readJSON(d.file("deposits", id, ".json"), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Deposits returns the deposits of account id.
func (d *Dir) Deposits(ctx context.Context, id string) ([]savings.Deposit, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, err := d.account(id)
	if err != nil {
		return nil, err
	}
	records, err := d.readDeposits(id)
	if err != nil {
		return nil, err
	}
	deposits := make([]savings.Deposit, 0, len(records))
	for _, r := range records {
		deposits = append(deposits, r.deposit(a.Currency))
	}
	return deposits, nil
}

// SaveDeposit creates (when dep has no id) or updates a deposit.
func (d *Dir) SaveDeposit(ctx context.Context, id string, dep savings.Deposit) (savings.Deposit, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.account(id); err != nil {
		return dep, err
	}
	records, err := d.readDeposits(id)
	if err != nil {
		return dep, err
	}
	if dep.ID == "" {
		dep.ID = d.NewID()
		records = append(records, newDepositRecord(dep))
	} else {
		i := slices.IndexFunc(records, func(r depositRecord) bool { return r.ID == dep.ID })
		if i < 0 {
			return dep, fmt.Errorf("deposit %q: %w", dep.ID, ErrNotFound)
		}
		records[i] = newDepositRecord(dep)
	}
	return dep, writeJSON(d.file("deposits", id, ".json"), records)
}

// DeleteDeposit removes a deposit.
func (d *Dir) DeleteDeposit(ctx context.Context, id, depositID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.account(id); err != nil {
		return err
	}
	records, err := d.readDeposits(id)
	if err != nil {
		return err
	}
	n := len(records)
	records = slices.DeleteFunc(records, func(r depositRecord) bool { return r.ID == depositID })
	if len(records) == n {
		return fmt.Errorf("deposit %q: %w", depositID, ErrNotFound)
	}
	return writeJSON(d.file("deposits", id, ".json"), records)
}
