package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cars24/connector-cli/internal/model"
)

func TestFilterInternalEmails(t *testing.T) {
	deals := []model.PreparedDeal{
		testDeal("1", "Alice", "0412345678", "alice@gmail.com"),
		testDeal("2", "Staff", "0412345679", "staff@cars24.com"),
		testDeal("3", "Tester", "0412345680", "t@YOPMAIL.com"),
		testDeal("4", "NoEmail", "0412345681", ""),
	}

	kept, removed := FilterInternalEmails(deals, []string{"cars24.com", "yopmail.com"})

	require.Len(t, kept, 2)
	assert.Equal(t, "1", kept[0].ID)
	assert.Equal(t, "4", kept[1].ID)
	require.Len(t, removed, 2)
	assert.Equal(t, ReasonInternalEmail, removed[0].Reason)
	assert.Equal(t, "2", removed[0].DealID)
}

func TestFilterSMSAlreadySent(t *testing.T) {
	mk := func(id, sent string) model.PreparedDeal {
		d := testDeal(id, "X", "0412345678", "x@gmail.com")
		d.ReminderSent = sent
		return d
	}
	deals := []model.PreparedDeal{
		mk("1", ""), mk("2", "true"), mk("3", "Yes"), mk("4", "false"), mk("5", "no"),
	}

	kept, removed := FilterSMSAlreadySent(deals)

	require.Len(t, kept, 3)
	require.Len(t, removed, 2)
	assert.Equal(t, ReasonSMSAlreadySent, removed[0].Reason)
	assert.ElementsMatch(t, []string{"2", "3"}, []string{removed[0].DealID, removed[1].DealID})
}

func TestFilterFutureBookings(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mk := func(id string, slot time.Time) model.PreparedDeal {
		d := testDeal(id, "X", "0412345678", "x@gmail.com")
		d.SlotDateLocal = slot
		return d
	}
	deals := []model.PreparedDeal{
		mk("past", today.AddDate(0, 0, -5)),
		mk("today", today),
		mk("future", today.AddDate(0, 0, 2)),
		mk("nodate", time.Time{}),
	}

	kept, removed := FilterFutureBookings(deals, today)

	require.Len(t, kept, 3)
	require.Len(t, removed, 1)
	assert.Equal(t, "future", removed[0].DealID)
	assert.Equal(t, ReasonFutureBooking, removed[0].Reason)
}
