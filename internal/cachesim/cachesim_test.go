package cachesim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/janisozaur/valgrind/internal/cacheconfig"
	"github.com/janisozaur/valgrind/internal/cachesim"
	"github.com/janisozaur/valgrind/internal/cg"
)

var _ = Describe("Cache", func() {
	var c *cachesim.Cache

	BeforeEach(func() {
		// 1KB, 2-way, 64B lines: 8 sets
		c = cachesim.New(cg.D1, cacheconfig.Triple{Size: 1024, Assoc: 2, LineSize: 64})
	})

	Describe("Ref", func() {
		It("should miss on cold cache", func() {
			Expect(c.Ref(0x1000, 4)).To(BeTrue())
		})

		It("should hit on a second reference", func() {
			c.Ref(0x1000, 4)
			Expect(c.Ref(0x1000, 4)).To(BeFalse())
		})

		It("should hit on different addresses in the same line", func() {
			c.Ref(0x1000, 4)
			Expect(c.Ref(0x103c, 4)).To(BeFalse())
		})

		It("should touch both lines of a straddling access", func() {
			// 0x103e..0x1041 spans lines 0x1000 and 0x1040
			Expect(c.Ref(0x103e, 4)).To(BeTrue())
			Expect(c.Ref(0x1000, 1)).To(BeFalse())
			Expect(c.Ref(0x1040, 1)).To(BeFalse())
		})

		It("should miss a straddling access if only the second line is absent", func() {
			c.Ref(0x1000, 1)
			Expect(c.Ref(0x103e, 4)).To(BeTrue())
		})

		It("should treat a zero size as one byte", func() {
			Expect(c.Ref(0x1000, 0)).To(BeTrue())
			Expect(c.Ref(0x1000, 1)).To(BeFalse())
		})
	})

	Describe("Replacement", func() {
		It("should evict the least recently used line of a set", func() {
			// 8 sets of 64B: set stride is 512B
			a, b, d := cg.Addr(0x0000), cg.Addr(0x0200), cg.Addr(0x0400)
			c.Ref(a, 1)
			c.Ref(b, 1)
			c.Ref(a, 1) // b is now LRU
			Expect(c.Ref(d, 1)).To(BeTrue())

			Expect(c.Ref(a, 1)).To(BeFalse())
			Expect(c.Ref(b, 1)).To(BeTrue())
		})
	})

	Describe("Desc", func() {
		It("should describe an n-way cache", func() {
			Expect(c.Desc()).To(Equal("1024 B, 64 B, 2-way associative"))
		})

		It("should describe a direct-mapped cache", func() {
			dm := cachesim.New(cg.I1, cacheconfig.Triple{Size: 65536, Assoc: 1, LineSize: 64})
			Expect(dm.Desc()).To(Equal("65536 B, 64 B, direct-mapped"))
		})

		It("should describe a fully associative cache", func() {
			fa := cachesim.New(cg.L2, cacheconfig.Triple{Size: 1024, Assoc: 16, LineSize: 64})
			Expect(fa.Desc()).To(Equal("1024 B, 64 B, fully associative"))
		})
	})
})

var _ = Describe("Hierarchy", func() {
	var h *cachesim.Hierarchy

	BeforeEach(func() {
		h = cachesim.NewHierarchy(cacheconfig.Defaults)
	})

	It("should report a cold access as missing both levels", func() {
		l1, l2 := h.SimulateAccess(cg.I1, 0x1000, 4)
		Expect(l1).To(BeTrue())
		Expect(l2).To(BeTrue())
	})

	It("should hit L1 on a repeated access", func() {
		h.SimulateAccess(cg.I1, 0x1000, 4)
		l1, l2 := h.SimulateAccess(cg.I1, 0x1000, 4)
		Expect(l1).To(BeFalse())
		Expect(l2).To(BeFalse())
	})

	It("should share L2 between instruction and data sides", func() {
		h.SimulateAccess(cg.I1, 0x1000, 4)
		l1, l2 := h.SimulateAccess(cg.D1, 0x1000, 4)
		Expect(l1).To(BeTrue())
		Expect(l2).To(BeFalse())
	})

	It("should keep I1 and D1 separate", func() {
		h.SimulateAccess(cg.D1, 0x2000, 8)
		l1, _ := h.SimulateAccess(cg.I1, 0x2000, 4)
		Expect(l1).To(BeTrue())
	})

	It("should label each cache", func() {
		Expect(h.Desc(cg.I1)).To(Equal("65536 B, 64 B, 2-way associative"))
		Expect(h.Desc(cg.D1)).To(Equal("65536 B, 64 B, 2-way associative"))
		Expect(h.Desc(cg.L2)).To(Equal("262144 B, 64 B, 8-way associative"))
	})

	It("should build each level with its kind and geometry", func() {
		Expect(h.I1.Kind()).To(Equal(cg.I1))
		Expect(h.D1.Kind()).To(Equal(cg.D1))
		Expect(h.L2.Kind()).To(Equal(cg.L2))
		Expect(h.L2.Geometry()).To(Equal(cacheconfig.Defaults.L2))
	})
})
