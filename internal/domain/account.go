package domain

type AccountStatus string

const (
	AccountStatusNew    AccountStatus = "new"
	AccountStatusOpen   AccountStatus = "open"
	AccountStatusClosed AccountStatus = "closed"
)

type Account struct {
	ID     string
	Name   string
	Status AccountStatus
}

func (a Account) IsOpen() bool {
	return a.Status == AccountStatusOpen
}

// AccountDirectory maps the human-assigned name of every open account
// to the account
type AccountDirectory map[string]Account

func NewAccountDirectory(accounts []Account) AccountDirectory {
	out := AccountDirectory{}
	for _, a := range accounts {
		if a.IsOpen() {
			out[a.Name] = a
		}
	}
	return out
}

func (d AccountDirectory) Names() []string {
	names := []string{}
	for name := range d {
		names = append(names, name)
	}
	return names
}
