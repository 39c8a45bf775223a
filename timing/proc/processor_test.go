package proc_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/procsim/insts"
	"github.com/sarchlab/procsim/timing/proc"
)

// sliceSource serves a fixed program as an instruction source.
type sliceSource struct {
	program []insts.Instruction
	pos     int
}

func (s *sliceSource) Next() (insts.Instruction, bool, error) {
	if s.pos >= len(s.program) {
		return insts.Instruction{}, false, nil
	}
	inst := s.program[s.pos]
	s.pos++
	return inst, true, nil
}

// failingSource returns an error on the first read.
type failingSource struct{}

func (failingSource) Next() (insts.Instruction, bool, error) {
	return insts.Instruction{}, false, errors.New("trace unreadable")
}

// inst builds a program instruction; dest/src use insts.RegNone for
// absent operands.
func inst(class insts.FUClass, dest, src1, src2 int) insts.Instruction {
	return insts.Instruction{
		Class: class,
		Dest:  dest,
		Src:   [2]int{src1, src2},
	}
}

// independent builds n register-free instructions of one class.
func independent(class insts.FUClass, n int) []insts.Instruction {
	program := make([]insts.Instruction, n)
	for i := range program {
		program[i] = inst(class, insts.RegNone, insts.RegNone, insts.RegNone)
	}
	return program
}

// run simulates a program to completion and returns the stats and the
// event log. Tags are assigned in program order starting at 1.
func run(config *proc.Config, program []insts.Instruction) (proc.Stats, *proc.EventLog) {
	log := proc.NewEventLog()
	processor, err := proc.New(config, &sliceSource{program: program},
		proc.WithEventRecorder(log))
	Expect(err).NotTo(HaveOccurred())

	stats, err := processor.Run()
	Expect(err).NotTo(HaveOccurred())
	Expect(processor.State()).To(Equal(proc.StateDone))
	return stats, log
}

// cycleOf returns the cycle of the single event of the given kind for
// the given tag.
func cycleOf(log *proc.EventLog, kind proc.EventKind, tag uint64) uint64 {
	for _, e := range log.Events() {
		if e.Kind == kind && e.Tag == tag {
			return e.Cycle
		}
	}
	Fail("no event found")
	return 0
}

// tagsAt returns the tags of all events of a kind in a cycle, in
// emission order.
func tagsAt(log *proc.EventLog, kind proc.EventKind, cycle uint64) []uint64 {
	var tags []uint64
	for _, e := range log.Events() {
		if e.Kind == kind && e.Cycle == cycle {
			tags = append(tags, e.Tag)
		}
	}
	return tags
}

var _ = Describe("Processor", func() {
	It("should reject an invalid configuration", func() {
		config := proc.DefaultConfig()
		config.ResultBuses = -1

		_, err := proc.New(config, &sliceSource{})
		Expect(err).To(HaveOccurred())
	})

	It("should finish an empty trace in one cycle", func() {
		stats, _ := run(proc.DefaultConfig(), nil)

		Expect(stats.Cycles).To(Equal(uint64(1)))
		Expect(stats.Fetched).To(BeZero())
		Expect(stats.Retired).To(BeZero())
	})

	It("should walk one instruction through every stage", func() {
		stats, log := run(proc.DefaultConfig(), independent(insts.FUClass0, 1))

		Expect(cycleOf(log, proc.EventFetched, 1)).To(Equal(uint64(1)))
		Expect(cycleOf(log, proc.EventDispatched, 1)).To(Equal(uint64(2)))
		Expect(cycleOf(log, proc.EventScheduled, 1)).To(Equal(uint64(3)))
		Expect(cycleOf(log, proc.EventExecuted, 1)).To(Equal(uint64(4)))
		Expect(cycleOf(log, proc.EventStateUpdate, 1)).To(Equal(uint64(4)))

		// Retirement is one cycle after broadcast; the run ends there.
		Expect(stats.Cycles).To(Equal(uint64(5)))
		Expect(stats.Retired).To(Equal(uint64(1)))
	})

	It("should retire exactly what it fetches", func() {
		program := append(independent(insts.FUClass0, 3),
			append(independent(insts.FUClass1, 5),
				independent(insts.FUClass2, 7)...)...)
		stats, _ := run(proc.DefaultConfig(), program)

		Expect(stats.Fetched).To(Equal(uint64(15)))
		Expect(stats.Retired).To(Equal(stats.Fetched))
		Expect(stats.Fired).To(Equal(stats.Fetched))
	})

	It("should end one cycle after the final broadcast", func() {
		stats, log := run(proc.DefaultConfig(), independent(insts.FUClass1, 6))

		var last uint64
		for _, e := range log.Events() {
			if e.Kind == proc.EventStateUpdate && e.Cycle > last {
				last = e.Cycle
			}
		}
		Expect(stats.Cycles).To(Equal(last + 1))
	})

	It("should pass through draining before done", func() {
		processor, err := proc.New(proc.DefaultConfig(),
			&sliceSource{program: independent(insts.FUClass1, 8)})
		Expect(err).NotTo(HaveOccurred())

		seen := map[proc.State]bool{}
		for processor.State() != proc.StateDone {
			Expect(processor.Tick()).To(Succeed())
			seen[processor.State()] = true
		}
		Expect(seen[proc.StateRunning]).To(BeTrue())
		Expect(seen[proc.StateDraining]).To(BeTrue())
	})

	It("should be a no-op to tick a done processor", func() {
		processor, err := proc.New(proc.DefaultConfig(), &sliceSource{})
		Expect(err).NotTo(HaveOccurred())

		_, runErr := processor.Run()
		Expect(runErr).NotTo(HaveOccurred())

		before := processor.Cycle()
		Expect(processor.Tick()).To(Succeed())
		Expect(processor.Cycle()).To(Equal(before))
	})

	It("should stamp each run with an id", func() {
		stats, _ := run(proc.DefaultConfig(), independent(insts.FUClass0, 1))
		Expect(stats.RunID).NotTo(BeEmpty())
	})

	It("should surface a source error", func() {
		processor, err := proc.New(proc.DefaultConfig(), failingSource{})
		Expect(err).NotTo(HaveOccurred())

		_, runErr := processor.Run()
		Expect(runErr).To(MatchError(ContainSubstring("trace unreadable")))
	})

	It("should reject an instruction with a bad register at fetch", func() {
		program := []insts.Instruction{inst(insts.FUClass0, 200, insts.RegNone, insts.RegNone)}
		processor, err := proc.New(proc.DefaultConfig(), &sliceSource{program: program})
		Expect(err).NotTo(HaveOccurred())

		_, runErr := processor.Run()
		Expect(runErr).To(MatchError(insts.ErrBadRegister))
	})

	It("should reject an instruction whose class has no units", func() {
		config := proc.DefaultConfig()
		config.K0Units = 0

		program := independent(insts.FUClass0, 1)
		processor, err := proc.New(config, &sliceSource{program: program})
		Expect(err).NotTo(HaveOccurred())

		_, runErr := processor.Run()
		Expect(runErr).To(MatchError(ContainSubstring("no k0 functional units")))
	})
})

var _ = Describe("Processor determinism", func() {
	It("should produce identical event sequences across runs", func() {
		program := []insts.Instruction{
			inst(insts.FUClass1, 1, insts.RegNone, insts.RegNone),
			inst(insts.FUClass2, 2, 1, insts.RegNone),
			inst(insts.FUClass0, 3, 1, 2),
			inst(insts.FUClass1, 1, 3, insts.RegNone),
			inst(insts.FUClass2, insts.RegNone, 1, 1),
		}
		config := &proc.Config{ResultBuses: 1, K0Units: 1, K1Units: 1, K2Units: 1, FetchRate: 2}

		statsA, logA := run(config, program)
		statsB, logB := run(config, program)

		Expect(logA.Events()).To(Equal(logB.Events()))
		Expect(statsA.Cycles).To(Equal(statsB.Cycles))
		Expect(statsA.Retired).To(Equal(statsB.Retired))
	})

	It("should order same-kind events within a cycle by ascending tag", func() {
		stats, log := run(proc.DefaultConfig(), independent(insts.FUClass2, 9))
		Expect(stats.Retired).To(Equal(uint64(9)))

		for cycle := uint64(1); cycle <= stats.Cycles; cycle++ {
			for _, kind := range []proc.EventKind{
				proc.EventFetched, proc.EventDispatched, proc.EventScheduled,
				proc.EventExecuted,
			} {
				tags := tagsAt(log, kind, cycle)
				for i := 1; i < len(tags); i++ {
					Expect(tags[i]).To(BeNumerically(">", tags[i-1]))
				}
			}
		}
	})
})
