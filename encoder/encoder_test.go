package encoder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lookbusy1344/lc3-toolchain/encoder"
	"github.com/lookbusy1344/lc3-toolchain/parser"
)

func assemble(src string) (*encoder.Image, error) {
	prog, err := parser.NewParser(src, "t.asm").Parse()
	if err != nil {
		return nil, err
	}
	return encoder.Encode(prog)
}

var _ = Describe("Encoder", func() {
	Describe("data processing instructions", func() {
		It("should encode ADD DR,SR1,SR2", func() {
			img, err := assemble(".ORIG x3000\nADD R0,R1,R2\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words).To(ConsistOf(uint16(0x1042)))
		})

		It("should encode ADD DR,SR1,#imm5", func() {
			img, err := assemble(".ORIG x3000\nADD R0,R1,#-1\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words).To(ConsistOf(uint16(0x107F)))
		})

		It("should encode AND with an immediate", func() {
			img, err := assemble(".ORIG x3000\nAND R2,R2,#0\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words).To(ConsistOf(uint16(0x54A0)))
		})

		It("should encode NOT", func() {
			img, err := assemble(".ORIG x3000\nNOT R0,R1\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words).To(ConsistOf(uint16(0x907F)))
		})
	})

	Describe("branch and jump instructions", func() {
		It("should encode an unconditional BR as nzp", func() {
			img, err := assemble(".ORIG x3000\nBR L\nL ADD R0,R0,#0\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words[0]).To(Equal(uint16(0x0E00)))
		})

		It("should encode a backward branch offset as negative", func() {
			img, err := assemble(".ORIG x3000\nL ADD R0,R0,#0\nBRz L\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words[1]).To(Equal(uint16(0x05FE)))
		})

		It("should encode RET as JMP R7", func() {
			img, err := assemble(".ORIG x3000\nRET\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words).To(ConsistOf(uint16(0xC1C0)))
		})

		It("should encode JSR with an 11-bit PC-relative offset", func() {
			img, err := assemble(".ORIG x3000\nJSR SUB\nSUB RET\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words[0]).To(Equal(uint16(0x4800)))
		})
	})

	Describe("memory instructions", func() {
		It("should encode LD with its PC-relative offset", func() {
			img, err := assemble(".ORIG x3000\nLD R0,A\nTRAP x25\nA .FILL x0041\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words).To(Equal([]uint16{0x2001, 0xF025, 0x0041}))
		})

		It("should encode LDR/STR base+offset addressing", func() {
			img, err := assemble(".ORIG x3000\nLDR R0,R1,#3\nSTR R0,R1,#-3\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words).To(Equal([]uint16{0x6043, 0x707D}))
		})
	})

	Describe("trap and directive encoding", func() {
		It("should encode TRAP HALT", func() {
			img, err := assemble(".ORIG x3000\nTRAP x25\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words).To(ConsistOf(uint16(0xF025)))
		})

		It("should expand STRINGZ into one word per char plus a terminator", func() {
			img, err := assemble(".ORIG x3000\nMSG .STRINGZ \"HI\"\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words).To(Equal([]uint16{0x0048, 0x0049, 0x0000}))
		})

		It("should expand BLKW into that many zero words", func() {
			img, err := assemble(".ORIG x3000\nBUF .BLKW #3\n.END\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Words).To(Equal([]uint16{0, 0, 0}))
		})
	})

	Describe("offset overflow", func() {
		It("should reject a BR offset that does not fit in 9 bits", func() {
			var src string
			src = ".ORIG x3000\nBR FAR\n"
			for i := 0; i < 400; i++ {
				src += "ADD R0,R0,#0\n"
			}
			src += "FAR ADD R1,R1,#0\n.END\n"
			_, err := assemble(src)
			Expect(err).To(HaveOccurred())
		})
	})
})
