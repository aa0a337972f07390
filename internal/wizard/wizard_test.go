package wizard_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qjourney/internal/stage"
	"github.com/san-kum/qjourney/internal/timer"
	"github.com/san-kum/qjourney/internal/wizard"
)

var transmission = stage.Table{
	{Name: "source", Duration: 2 * time.Second},
	{Name: "transit", Duration: 50 * time.Millisecond, Increment: 2, Limit: 100},
	{Name: "arrived", Duration: 2 * time.Second},
	{Name: "secured"},
}

var huffman = stage.Table{
	{Name: "input", Duration: 2 * time.Second},
	{Name: "tree", Duration: 2 * time.Second},
	{Name: "compress", Duration: 300 * time.Millisecond, Increment: 1, Limit: 10},
	{Name: "stats"},
}

func sevenSteps() []wizard.Step {
	return []wizard.Step{
		{Name: "Original Message", Panel: "message"},
		{Name: "Binary Conversion", Panel: "binary", Table: stage.Table{
			{Name: "reveal", Duration: time.Second, Increment: 1, Limit: 5},
			{Name: "complete"},
		}},
		{Name: "Huffman Compression", Panel: "huffman", Table: huffman},
		{Name: "Quantum Encryption", Panel: "quantum", Table: stage.Table{
			{Name: "prepare", Duration: time.Second},
			{Name: "hadamard"},
		}},
		{Name: "Network Transmission", Panel: "transmission", Table: transmission},
		{Name: "Quantum Decryption", Panel: "decryption", Table: stage.Table{
			{Name: "align", Duration: 2 * time.Second},
			{Name: "recovered"},
		}},
		{Name: "Final Message", Panel: "final"},
	}
}

var _ = Describe("Wizard", func() {
	var (
		loop *timer.Loop
		w    *wizard.Wizard
	)

	BeforeEach(func() {
		var err error
		loop = timer.NewLoop()
		w, err = wizard.New(loop, sevenSteps())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("rejects an empty step list", func() {
			_, err := wizard.New(loop, nil)
			Expect(err).To(MatchError(wizard.ErrNoSteps))
		})

		It("rejects an invalid panel table", func() {
			_, err := wizard.New(loop, []wizard.Step{
				{Name: "bad", Panel: "bad", Table: stage.Table{{Name: ""}}},
			})
			Expect(err).To(MatchError(stage.ErrInvalidStage))
		})

		It("starts on the first step", func() {
			st := w.Snapshot()
			Expect(st.Index).To(Equal(0))
			Expect(st.Count).To(Equal(7))
			Expect(st.IsFirst).To(BeTrue())
			Expect(st.IsLast).To(BeFalse())
			Expect(st.Fraction).To(BeNumerically("~", 1.0/7, 1e-9))
			Expect(st.Stage).To(BeNil())
		})

		It("accepts a single step", func() {
			one, err := wizard.New(loop, []wizard.Step{{Name: "only", Panel: "final"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(one.IsFirst()).To(BeTrue())
			Expect(one.IsLast()).To(BeTrue())
			Expect(one.Fraction()).To(Equal(1.0))
		})
	})

	Describe("navigation", func() {
		It("ignores previous on the first step", func() {
			w.Previous()
			Expect(w.Index()).To(Equal(0))
		})

		It("clamps next on the last step", func() {
			for i := 0; i < 6; i++ {
				w.Next()
			}
			Expect(w.Index()).To(Equal(6))
			Expect(w.IsLast()).To(BeTrue())
			Expect(w.Fraction()).To(Equal(1.0))

			w.Next()
			Expect(w.Index()).To(Equal(6))
		})

		It("resets from the middle", func() {
			w.GoTo(3)
			w.Reset()
			Expect(w.Index()).To(Equal(0))
			Expect(w.IsFirst()).To(BeTrue())
		})

		It("clamps GoTo", func() {
			w.GoTo(42)
			Expect(w.Index()).To(Equal(6))
			w.GoTo(-3)
			Expect(w.Index()).To(Equal(0))
		})

		It("reports transitions", func() {
			var seen []string
			w.OnTransition(func(from, to wizard.Step) {
				seen = append(seen, from.Panel+">"+to.Panel)
			})
			w.Next()
			w.Previous()
			w.Previous()
			Expect(seen).To(Equal([]string{"message>binary", "binary>message"}))
		})
	})

	Describe("panel lifetime", func() {
		It("creates the panel sequencer on entry", func() {
			w.GoTo(2)
			st := w.Snapshot()
			Expect(st.Stage).NotTo(BeNil())
			Expect(st.Stage.Stage).To(Equal("input"))
			Expect(loop.Pending()).To(Equal(1))
		})

		It("stops delivering ticks once the step is left at 40% progress", func() {
			w.GoTo(4)
			var after []stage.Snapshot
			left := false
			w.OnStage(func(s stage.Snapshot) {
				if left && s.Panel == "transmission" {
					after = append(after, s)
				}
			})

			loop.Advance(3 * time.Second)
			st := w.Snapshot()
			Expect(st.Stage.Stage).To(Equal("transit"))
			Expect(st.Stage.Progress).To(Equal(40))

			w.Next()
			left = true
			Expect(loop.Pending()).To(Equal(1))

			loop.Advance(time.Minute)
			Expect(after).To(BeEmpty())
		})

		It("restarts a panel from its first stage on re-entry", func() {
			w.GoTo(2)
			loop.Advance(5 * time.Second)
			Expect(w.Snapshot().Stage.Stage).To(Equal("compress"))

			w.Next()
			w.Previous()
			st := w.Snapshot()
			Expect(st.Stage.Stage).To(Equal("input"))
			Expect(st.Stage.Progress).To(Equal(0))
		})

		It("holds no timers on a static step", func() {
			w.GoTo(2)
			w.GoTo(6)
			Expect(loop.Pending()).To(Equal(0))
		})

		It("runs a panel to completion", func() {
			w.GoTo(2)
			loop.Advance(huffman.TotalDuration())
			st := w.Snapshot()
			Expect(st.PanelDone()).To(BeTrue())
			Expect(st.Stage.Stage).To(Equal("stats"))
		})
	})

	Describe("pause", func() {
		It("freezes the active panel and panels entered while paused", func() {
			w.GoTo(2)
			w.Pause()
			loop.Advance(time.Minute)
			Expect(w.Snapshot().Stage.Stage).To(Equal("input"))

			w.Next()
			loop.Advance(time.Minute)
			Expect(w.Snapshot().Stage.Stage).To(Equal("prepare"))

			w.Resume()
			loop.Advance(time.Second)
			Expect(w.Snapshot().Stage.Stage).To(Equal("hadamard"))
		})
	})
})
