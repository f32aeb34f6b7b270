package pipeline

import (
	"time"

	"github.com/cars24/connector-cli/internal/config"
	"github.com/cars24/connector-cli/internal/drafting"
	"github.com/cars24/connector-cli/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		HubSpot: config.HubSpotConfig{
			PipelineID:           "2345821",
			StageEnquiry:         StageEnquiryID,
			StageBooked:          StageBookedID,
			StageConducted:       StageConductedID,
			ActivePurchaseStages: []string{"active-1", "active-2"},
		},
		Aircall: config.AircallConfig{
			ReminderNumber: "num-1",
			OutreachNumber: "num-2",
		},
		Dealer: config.DealerConfig{
			Name:             "Cars24 Laverton",
			ManagerName:      "Pawan",
			Timezone:         "UTC",
			BlacklistDomains: []string{"cars24.com", "yopmail.com"},
		},
		SMS: config.SMSConfig{MaxChars: 400},
	}
}

func newTestPipeline(crm *mockCRM, sms *mockSMS, llm *mockLLM) *Pipeline {
	cfg := testConfig()
	drafter := drafting.New(llm, cfg.Dealer.Name, cfg.Dealer.ManagerName, cfg.SMS.MaxChars)
	return New(cfg, crm, sms, drafter, nil, time.UTC)
}

func testDeal(id, name, phone, email string) model.PreparedDeal {
	return model.PreparedDeal{
		Deal: model.Deal{
			ID:           id,
			FullName:     name,
			Mobile:       phone,
			Email:        email,
			VehicleMake:  "Toyota",
			VehicleModel: "Corolla",
			Stage:        StageBookedID,
		},
		PhoneRaw:  phone,
		PhoneNorm: NormalizePhone(phone),
		EmailNorm: NormalizeEmail(email),
	}
}

func allDays() map[time.Weekday]bool {
	days := make(map[time.Weekday]bool, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		days[d] = true
	}
	return days
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
