package weight

import (
	"sort"
	"sync"

	"github.com/holiman/uint256"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types"
)

type checkpoint struct {
	at      int64
	balance *uint256.Int
}

// BalanceBook is a balance source keeping the balance history of accounts.
// BalanceOfAt returns the last balance set at or before the given time.
type BalanceBook struct {
	token   types.Address
	history map[types.Address][]checkpoint
	mtx     sync.RWMutex
}

func NewBalanceBook(token types.Address) *BalanceBook {
	return &BalanceBook{
		token:   token,
		history: make(map[types.Address][]checkpoint),
	}
}

func (book *BalanceBook) Token() types.Address {
	return book.token
}

func (book *BalanceBook) SetBalance(addr types.Address, at int64, balance *uint256.Int) {
	book.mtx.Lock()
	defer book.mtx.Unlock()

	cps := book.history[addr]
	idx := sort.Search(len(cps), func(i int) bool { return cps[i].at >= at })
	cp := checkpoint{at: at, balance: balance.Clone()}
	if idx < len(cps) && cps[idx].at == at {
		cps[idx] = cp
	} else {
		cps = append(cps, checkpoint{})
		copy(cps[idx+1:], cps[idx:])
		cps[idx] = cp
	}
	book.history[addr] = cps
}

func (book *BalanceBook) BalanceOfAt(addr types.Address, at int64) *uint256.Int {
	book.mtx.RLock()
	defer book.mtx.RUnlock()

	cps := book.history[addr]
	idx := sort.Search(len(cps), func(i int) bool { return cps[i].at > at })
	if idx == 0 {
		return uint256.NewInt(0)
	}
	return cps[idx-1].balance.Clone()
}

var _ ctrlertypes.IBalanceSource = (*BalanceBook)(nil)
