package proc_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/procsim/timing/proc"
)

var _ = Describe("ResultBus", func() {
	It("should drain nothing when empty", func() {
		bus := proc.NewResultBus(2)
		Expect(bus.Drain()).To(BeEmpty())
		Expect(bus.PendingCount()).To(BeZero())
	})

	It("should drain at most its width per cycle", func() {
		bus := proc.NewResultBus(2)
		for tag := uint64(1); tag <= 5; tag++ {
			bus.Enqueue(proc.Completion{Slot: int(tag), Tag: tag, Cycle: 4})
		}

		batch := bus.Drain()
		Expect(batch).To(HaveLen(2))
		Expect(batch[0].Tag).To(Equal(uint64(1)))
		Expect(batch[1].Tag).To(Equal(uint64(2)))
		Expect(bus.PendingCount()).To(Equal(3))
	})

	It("should preserve completion-then-tag order across cycles", func() {
		bus := proc.NewResultBus(1)
		bus.Enqueue(proc.Completion{Slot: 0, Tag: 9, Cycle: 4})
		bus.Enqueue(proc.Completion{Slot: 1, Tag: 7, Cycle: 5})

		// Tag 9 completed first; it wins the bus ahead of the older tag.
		Expect(bus.Drain()[0].Tag).To(Equal(uint64(9)))
		Expect(bus.Drain()[0].Tag).To(Equal(uint64(7)))
		Expect(bus.Drain()).To(BeEmpty())
	})

	It("should never drop a queued completion", func() {
		bus := proc.NewResultBus(1)
		for tag := uint64(1); tag <= 4; tag++ {
			bus.Enqueue(proc.Completion{Slot: int(tag), Tag: tag, Cycle: 3})
		}

		var drained []uint64
		for bus.PendingCount() > 0 {
			for _, c := range bus.Drain() {
				drained = append(drained, c.Tag)
			}
		}
		Expect(drained).To(Equal([]uint64{1, 2, 3, 4}))
	})

	It("should panic on an out-of-order enqueue", func() {
		bus := proc.NewResultBus(1)
		bus.Enqueue(proc.Completion{Slot: 0, Tag: 5, Cycle: 4})

		Expect(func() {
			bus.Enqueue(proc.Completion{Slot: 1, Tag: 3, Cycle: 4})
		}).To(Panic())
		Expect(func() {
			bus.Enqueue(proc.Completion{Slot: 2, Tag: 9, Cycle: 3})
		}).To(Panic())
	})
})

var _ = Describe("UnitPool", func() {
	It("should bound reservations by capacity", func() {
		pool := proc.NewUnitPool(proc.DefaultConfig())

		Expect(pool.TryReserve(0)).To(BeTrue())
		Expect(pool.TryReserve(0)).To(BeFalse())
		Expect(pool.InUse(0)).To(Equal(1))
		Expect(pool.Capacity(0)).To(Equal(1))
	})

	It("should free a unit on release", func() {
		pool := proc.NewUnitPool(proc.DefaultConfig())

		Expect(pool.TryReserve(1)).To(BeTrue())
		Expect(pool.TryReserve(1)).To(BeTrue())
		Expect(pool.TryReserve(1)).To(BeFalse())

		pool.Release(1)
		Expect(pool.TryReserve(1)).To(BeTrue())
	})

	It("should track idleness across classes", func() {
		pool := proc.NewUnitPool(proc.DefaultConfig())
		Expect(pool.Idle()).To(BeTrue())

		pool.TryReserve(2)
		Expect(pool.Idle()).To(BeFalse())

		pool.Release(2)
		Expect(pool.Idle()).To(BeTrue())
	})

	It("should panic when releasing an idle class", func() {
		pool := proc.NewUnitPool(proc.DefaultConfig())
		Expect(func() { pool.Release(0) }).To(Panic())
	})
})
