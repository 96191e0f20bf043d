package state_test

import (
	"docflow/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Project", func() {
	Context("with an empty signatory chain", func() {
		It("should keep the current status untouched", func() {
			Ω(state.Project(state.Draft, nil)).Should(Equal(state.Draft))
			Ω(state.Project(state.Archived, []state.SignatoryStatus{})).Should(Equal(state.Archived))
		})
	})

	Context("with a rejected slot", func() {
		It("should project rejected regardless of the other slots", func() {
			Ω(state.Project(state.InReview, []state.SignatoryStatus{
				state.SignatoryApproved, state.SignatoryRejected, state.SignatoryCanceled,
			})).Should(Equal(state.Rejected))

			Ω(state.Project(state.InReview, []state.SignatoryStatus{
				state.SignatoryRejected,
			})).Should(Equal(state.Rejected))
		})
	})

	Context("with a fully approved chain", func() {
		It("should project approved", func() {
			Ω(state.Project(state.InReview, []state.SignatoryStatus{
				state.SignatoryApproved, state.SignatoryApproved,
			})).Should(Equal(state.Approved))
		})
	})

	Context("with an untouched chain", func() {
		It("should keep a draft document in draft", func() {
			Ω(state.Project(state.Draft, []state.SignatoryStatus{
				state.SignatoryPending, state.SignatoryPending,
			})).Should(Equal(state.Draft))
		})
		It("should keep a started document in review", func() {
			Ω(state.Project(state.InReview, []state.SignatoryStatus{
				state.SignatoryPending, state.SignatoryPending,
			})).Should(Equal(state.InReview))
		})
	})

	Context("with a partially approved chain", func() {
		It("should project in review", func() {
			Ω(state.Project(state.InReview, []state.SignatoryStatus{
				state.SignatoryApproved, state.SignatoryPending, state.SignatoryPending,
			})).Should(Equal(state.InReview))

			Ω(state.Project(state.Draft, []state.SignatoryStatus{
				state.SignatoryApproved, state.SignatoryPending,
			})).Should(Equal(state.InReview))
		})
	})
})

var _ = Describe("Status", func() {
	Describe("IsTerminal", func() {
		It("should report terminal statuses only", func() {
			Ω(state.Rejected.IsTerminal()).Should(BeTrue())
			Ω(state.Published.IsTerminal()).Should(BeTrue())
			Ω(state.Archived.IsTerminal()).Should(BeTrue())

			Ω(state.Draft.IsTerminal()).Should(BeFalse())
			Ω(state.InReview.IsTerminal()).Should(BeFalse())
			Ω(state.Approved.IsTerminal()).Should(BeFalse())
		})
	})
})
