package model

import "time"

// Dataset is the whole loan book as one document: three independent
// collections plus the time of the last write. The persistence collaborator
// stores and replaces it atomically — there are no partial updates.
type Dataset struct {
	Clients     []Client  `json:"clients"`
	Loans       []Loan    `json:"loans"`
	Expenses    []Expense `json:"expenses"`
	LastUpdated time.Time `json:"last_updated"`
}

// Clone returns a copy whose collection slices are independent of the
// receiver's. Loan values share their schedule backing arrays, which is safe
// because aggregate mutations always return fresh copies.
func (d Dataset) Clone() Dataset {
	out := d
	out.Clients = append([]Client(nil), d.Clients...)
	out.Loans = append([]Loan(nil), d.Loans...)
	out.Expenses = append([]Expense(nil), d.Expenses...)
	return out
}

// ClientByID resolves a client id. Loan→client references are non-owning, so
// a dangling id is reported via ok=false rather than an error.
func (d Dataset) ClientByID(id string) (Client, bool) {
	for _, c := range d.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

// LoanByID resolves a loan id.
func (d Dataset) LoanByID(id string) (Loan, bool) {
	for _, l := range d.Loans {
		if l.ID() == id {
			return l, true
		}
	}
	return Loan{}, false
}

// LoansByClient returns every loan referencing the given client, in book
// order.
func (d Dataset) LoansByClient(clientID string) []Loan {
	var out []Loan
	for _, l := range d.Loans {
		if l.ClientID() == clientID {
			out = append(out, l)
		}
	}
	return out
}

// ReplaceLoan swaps the loan with the same id in place, preserving book
// order.
func (d *Dataset) ReplaceLoan(loan Loan) bool {
	for i := range d.Loans {
		if d.Loans[i].ID() == loan.ID() {
			d.Loans[i] = loan
			return true
		}
	}
	return false
}
