package proc

import (
	"fmt"

	"github.com/sarchlab/procsim/insts"
)

// UnitPool tracks functional-unit occupancy per class. A unit is in use
// from the cycle its instruction fires until the cycle the result is
// broadcast; bus contention can hold a unit well past raw completion.
type UnitPool struct {
	capacity [insts.NumFUClasses]int
	inUse    [insts.NumFUClasses]int
}

// NewUnitPool creates a pool with the configured per-class counts.
func NewUnitPool(config *Config) *UnitPool {
	u := &UnitPool{}
	for c := insts.FUClass0; c < insts.NumFUClasses; c++ {
		u.capacity[c] = config.UnitCount(c)
	}
	return u
}

// TryReserve claims one unit of the given class, reporting whether one
// was free.
func (u *UnitPool) TryReserve(class insts.FUClass) bool {
	if u.inUse[class] >= u.capacity[class] {
		return false
	}
	u.inUse[class]++
	return true
}

// Release returns one unit of the given class to the pool. Releasing an
// idle class is a logic defect and panics.
func (u *UnitPool) Release(class insts.FUClass) {
	if u.inUse[class] == 0 {
		panic(fmt.Sprintf("release of idle functional unit class %v", class))
	}
	u.inUse[class]--
}

// InUse returns the number of busy units of the given class.
func (u *UnitPool) InUse(class insts.FUClass) int {
	return u.inUse[class]
}

// Capacity returns the configured unit count for the given class.
func (u *UnitPool) Capacity(class insts.FUClass) int {
	return u.capacity[class]
}

// Idle reports whether no unit of any class is busy.
func (u *UnitPool) Idle() bool {
	for c := insts.FUClass0; c < insts.NumFUClasses; c++ {
		if u.inUse[c] != 0 {
			return false
		}
	}
	return true
}
