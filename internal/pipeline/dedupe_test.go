package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cars24/connector-cli/internal/model"
)

func TestDedupeCollapsesByPhoneEmail(t *testing.T) {
	today := mustDate("2025-03-10")

	d1 := testDeal("1", "Alice Smith", "0412345678", "alice@gmail.com")
	d1.SlotDateLocal = mustDate("2025-03-11")
	d1.SlotTimeLocal = "10:30"

	d2 := testDeal("2", "Alice Smith", "0412345678", "alice@gmail.com")
	d2.VehicleMake = "Mazda"
	d2.VehicleModel = "CX-5"
	d2.SlotDateLocal = mustDate("2025-03-12")
	d2.SlotTimeLocal = "14:00"

	d3 := testDeal("3", "Bob Jones", "0498765432", "bob@gmail.com")
	d3.Stage = StageConductedID

	identities, removed := Dedupe([]model.PreparedDeal{d1, d2, d3}, DedupeOptions{Today: today})

	require.Len(t, identities, 2)
	require.Len(t, removed, 1)
	assert.Equal(t, "2", removed[0].DealID)
	assert.Contains(t, removed[0].Reason, "Deduped under Alice Smith")

	alice := identities[0]
	assert.Equal(t, "Alice Smith", alice.CustomerName)
	assert.Equal(t, "+61412345678", alice.Phone)
	assert.Equal(t, []string{"Toyota Corolla", "Mazda CX-5"}, alice.Cars)
	assert.Equal(t, 2, alice.DealsCount)
	assert.Equal(t, "tomorrow at 10:30; in a few days at 14:00", alice.WhenRel)
	assert.Equal(t, "11 Mar 2025 10:30; 12 Mar 2025 14:00", alice.WhenExact)
	assert.Equal(t, []string{"1", "2"}, alice.DealIDs)
	assert.Equal(t, "booked", alice.StageHint)
	assert.Equal(t, []string{"TD booked"}, alice.StageLabels)

	bob := identities[1]
	assert.Equal(t, "conducted", bob.StageHint)
}

func TestDedupeDropsUnreachableRows(t *testing.T) {
	blank := testDeal("1", "Ghost", "", "")
	identities, removed := Dedupe([]model.PreparedDeal{blank}, DedupeOptions{Today: mustDate("2025-03-10")})
	assert.Empty(t, identities)
	assert.Empty(t, removed)
}

func TestDedupeCleansNanValues(t *testing.T) {
	d := testDeal("1", "nan", "0412345678", "x@gmail.com")
	identities, _ := Dedupe([]model.PreparedDeal{d}, DedupeOptions{Today: mustDate("2025-03-10")})
	require.Len(t, identities, 1)
	assert.Equal(t, "", identities[0].CustomerName)
}

func TestDedupeUseConducted(t *testing.T) {
	d := testDeal("1", "Alice", "0412345678", "a@gmail.com")
	d.ConductedDate = mustDate("2025-03-09")
	d.ConductedTime = "11:00 AM"
	d.SlotDateLocal = mustDate("2025-03-20")

	identities, _ := Dedupe([]model.PreparedDeal{d}, DedupeOptions{UseConducted: true, Today: mustDate("2025-03-10")})
	require.Len(t, identities, 1)
	assert.Equal(t, "yesterday at 11:00 AM", identities[0].WhenRel)
}

func TestDedupeVideoURLsFirstSeenOrder(t *testing.T) {
	d1 := testDeal("1", "A", "0412345678", "a@gmail.com")
	d1.VideoURL = "https://v/1"
	d2 := testDeal("2", "A", "0412345678", "a@gmail.com")
	d2.VideoURL = "https://v/1"
	d3 := testDeal("3", "A", "0412345678", "a@gmail.com")
	d3.VideoURL = "https://v/2"

	identities, _ := Dedupe([]model.PreparedDeal{d1, d2, d3}, DedupeOptions{Today: mustDate("2025-03-10")})
	require.Len(t, identities, 1)
	assert.Equal(t, []string{"https://v/1", "https://v/2"}, identities[0].VideoURLs)
}

func TestStageLabel(t *testing.T) {
	assert.Equal(t, "Enquiry (no TD)", StageLabel(StageEnquiryID))
	assert.Equal(t, "TD booked", StageLabel(StageBookedID))
	assert.Equal(t, "TD conducted (no deposit)", StageLabel(StageConductedID))
	assert.Equal(t, "999", StageLabel("999"))
}

func TestDealIDsByPhone(t *testing.T) {
	d1 := testDeal("1", "A", "0412345678", "a@gmail.com")
	d2 := testDeal("2", "A", "0412345678", "a2@gmail.com")
	d3 := testDeal("3", "B", "0498765432", "b@gmail.com")
	identities := []model.Identity{
		{Phone: "+61412345678"},
		{Phone: ""},
	}

	out := DealIDsByPhone(identities, []model.PreparedDeal{d1, d2, d3})
	require.Len(t, out, 1)
	assert.Equal(t, []string{"1", "2"}, out["+61412345678"])
}
