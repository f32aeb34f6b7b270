// Package drafting turns deduplicated customers into SMS drafts using
// an LLM, with deterministic fallbacks where a template is safe.
package drafting

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cars24/connector-cli/internal/model"
	"github.com/cars24/connector-cli/pkg/openai"
)

// Mode selects the message style for a workflow.
type Mode string

const (
	ModeReminder Mode = "reminder"
	ModeManager  Mode = "manager"
	ModeOldLead  Mode = "oldlead"
)

const (
	draftTemperature    = 0.6
	draftMaxTokens      = 180
	analysisTemperature = 0.3
	analysisMaxTokens   = 250
)

// Drafter writes outbound SMS on behalf of a dealership.
type Drafter struct {
	llm      openai.Client
	dealer   string
	manager  string
	maxChars int
}

// New creates a Drafter. maxChars caps every outgoing body.
func New(llm openai.Client, dealer, manager string, maxChars int) *Drafter {
	if maxChars <= 0 {
		maxChars = 400
	}
	return &Drafter{llm: llm, dealer: dealer, manager: manager, maxChars: maxChars}
}

// ClipSMS hard-caps a body at limit characters.
func ClipSMS(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}
	return strings.TrimRight(text[:limit], " ")
}

func (d *Drafter) complete(ctx context.Context, system, user string) string {
	text, err := d.llm.Complete(ctx, openai.Request{
		System:      system,
		User:        user,
		Temperature: draftTemperature,
		MaxTokens:   draftMaxTokens,
	})
	if err != nil {
		zap.L().Warn("drafting: completion failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

func firstName(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

func firstVideo(urls []string) string {
	for _, u := range urls {
		if v := strings.TrimSpace(u); v != "" {
			return v
		}
	}
	return ""
}

// Reminder drafts a generic business-signed test drive reminder.
// Returns "" when no draft could be produced.
func (d *Drafter) Reminder(ctx context.Context, name, pairsText string, videoURLs []string) string {
	system := fmt.Sprintf(
		"You write outbound SMS for %s (Australia). "+
			"Tone: warm, polite, inviting, Australian. AU spelling. "+
			"Write as the business (sender). Include a clear CTA to confirm or reschedule.", d.dealer)

	video := firstVideo(videoURLs)
	var user string
	if video != "" {
		system += " If video URL provided, encourage virtual tour before test drive. Keep ~400 chars max. No emojis/links except the provided video URL. Avoid apostrophes."
		user = fmt.Sprintf("Recipient name: %s.\nUpcoming test drive(s): %s.\nVideo tour URL: %s.\nFriendly reminder with video tour suggestion.",
			displayName(name), pairsText, video)
	} else {
		system += " Keep ~280 chars. No emojis/links. Avoid apostrophes."
		user = fmt.Sprintf("Recipient name: %s.\nUpcoming test drive(s): %s.\nFriendly reminder.",
			displayName(name), pairsText)
	}

	text := d.complete(ctx, system, user)
	if text == "" {
		return ""
	}
	signature := "–" + d.dealer
	if strings.HasSuffix(text, signature) {
		return text
	}
	return text + " " + signature
}

// ReminderAssociate drafts a reminder signed by the assigned sales
// associate. Returns "" when the LLM produced nothing; there is no
// safe template for an associate-voiced message.
func (d *Drafter) ReminderAssociate(ctx context.Context, name, pairsText, associate string, videoURLs []string) string {
	who := strings.TrimSpace(associate)
	if who == "" {
		who = "Team at " + d.dealer
	}
	system := fmt.Sprintf(
		"You write outbound SMS for %s (Australia) as a named sales associate. "+
			"Tone: warm, polite, inviting, Australian. AU spelling. Avoid apostrophes. "+
			"Purpose: remind about the upcoming test drive, sound excited to show the car, "+
			"mention the car is in great condition, the associate has seen it and is looking forward to meeting the customer. "+
			"If a video URL is provided, on a new line invite the customer to view it before the appointment as a pre-cursor to the inspection. "+
			"Do not include any links other than the provided video URL. "+
			"Return ONLY the SMS text, no preamble.", d.dealer)

	lines := []string{
		"Recipient: " + displayName(name),
		"Associate: " + who,
		"Upcoming test drive(s): " + pairsText,
	}
	if video := firstVideo(videoURLs); video != "" {
		lines = append(lines, "Video URL: "+video)
	}
	lines = append(lines, fmt.Sprintf("Write <= %d characters. No emojis. Finish the message with ' –%s' signature.", d.maxChars, who))

	return d.complete(ctx, system, strings.Join(lines, "\n"))
}

// ManagerFollowUp drafts a post-test-drive follow-up from the store
// manager, opening with a fixed introduction.
func (d *Drafter) ManagerFollowUp(ctx context.Context, name, pairsText string) string {
	first := firstName(name)
	system := fmt.Sprintf(
		"You write outbound SMS for %s (Australia) from the store manager, %s. "+
			"Context: the customer completed a test drive. "+
			"Tone: warm, courteous, Australian; encourage a reply. "+
			"Goal: ask if they want to proceed (deposit/next steps), offer help, invite brief feedback. "+
			"Keep ~300 chars. No emojis/links. Avoid apostrophes.", d.dealer, d.manager)
	user := fmt.Sprintf(
		"Recipient name: %s.\nCompleted test drive(s): %s.\n"+
			"Begin the SMS with exactly: Hi %s, this is %s, Sales Manager at %s.\n"+
			"Then ask about proceeding (deposit/next steps), offer assistance, invite quick feedback.",
		displayName(name), pairsText, first, d.manager, d.dealer)

	text := d.complete(ctx, system, user)
	if text == "" {
		return ""
	}
	return d.ensureManagerSignature(text, first)
}

// OldLead drafts a re-engagement SMS shaped by the lead's pipeline
// stage and primary vehicle. Falls back to a deterministic template
// when the LLM fails.
func (d *Drafter) OldLead(ctx context.Context, name string, vehicles []model.VehicleDetail, stageHint string) string {
	first := firstName(name)

	var primary model.VehicleDetail
	if len(vehicles) > 0 {
		primary = vehicles[0]
	}
	vehicleText := vehicleDescription(primary)
	context, ask, action := oldLeadStageCopy(primary.StageID, stageHint)

	system := fmt.Sprintf(
		"You write outbound SMS for %s (Australia) from the store manager, %s. "+
			"Tone: warm, courteous, Australian; avoid pressure; encourage a reply. "+
			"Promise personal attention and that we will work out a deal they will love. "+
			"Include the vehicle URL if provided so customer can identify the specific car. "+
			"Keep ~300 characters if no URL, or ~400 characters if URL included. "+
			"No emojis/links except the provided vehicle URL. Avoid apostrophes.", d.dealer, d.manager)
	user := fmt.Sprintf(
		"Recipient name: %s.\nVehicle of interest: %s\nVehicle URL (include if provided): %s\n"+
			"Stage context: %s\nSuggested stage-specific action: %s\n"+
			"Begin the SMS with exactly: Hi %s, this is %s, Sales Manager at %s.\n"+
			"%s Include the vehicle URL in the message if provided. Make it friendly and concise.",
		displayName(name), vehicleText, primary.URL, context, action, first, d.manager, d.dealer, ask)

	text := d.complete(ctx, system, user)
	if text == "" {
		urlText := ""
		if primary.URL != "" {
			urlText = " " + primary.URL
		}
		text = fmt.Sprintf("Hi %s, this is %s, Sales Manager at %s. Hope you are well! Regarding the %s%s - %s Please let me know. Thanks!",
			first, d.manager, d.dealer, vehicleText, urlText, action)
	}
	return d.ensureManagerSignature(text, first)
}

// ensureManagerSignature keeps drafts that already open with the fixed
// manager introduction, and signs everything else.
func (d *Drafter) ensureManagerSignature(text, first string) string {
	intro := fmt.Sprintf("hi %s, this is %s, sales manager at %s",
		strings.ToLower(first), strings.ToLower(d.manager), strings.ToLower(d.dealer))
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(strings.ToLower(trimmed), intro) {
		return trimmed
	}
	return fmt.Sprintf("%s –%s, Sales Manager", trimmed, d.manager)
}

func oldLeadStageCopy(stageID, stageHint string) (context, ask, action string) {
	switch {
	case stageID == "1119198251" || stageHint == "enquiry":
		return "They enquired but have not booked a test drive yet.",
			"Ask if they are still looking for a car and encourage booking a test drive to meet in person when they are on site.",
			"Are you still looking for a car? I would love to meet you in person when you are on site for a test drive."
	case stageID == "1119198252" || stageHint == "booked":
		return "They booked a test drive but did not show up.",
			"Encourage them to drive down to Laverton, mention the drive would be worth it, ask about change of plans.",
			"I encourage you to drive down to Laverton - the drive would definitely be worth it! Has there been any change of plans?"
	case stageID == "1119198253" || stageHint == "conducted":
		return "They completed a test drive but did not proceed with purchase.",
			"Check what could be done differently to make this work for you.",
			"Is there anything I could do differently to make this work for you?"
	}
	return "It has been a while since they reached out.",
		"Re-engage and check current interest.",
		"Are you still in the market for a vehicle? I am here to help find the perfect deal."
}

func vehicleDescription(v model.VehicleDetail) string {
	var parts []string
	for _, p := range []string{v.Year, v.Colour, v.Make, v.Model} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "the vehicle"
	}
	return strings.Join(parts, " ")
}

func displayName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return "there"
}

// BuildMessages drafts one SMS per identity, auditing identities that
// could not be messaged.
func (d *Drafter) BuildMessages(ctx context.Context, identities []model.Identity, mode Mode) ([]model.Message, []model.Skipped) {
	var msgs []model.Message
	var skipped []model.Skipped
	for _, id := range identities {
		if strings.TrimSpace(id.Phone) == "" {
			skipped = append(skipped, model.Skipped{Identity: id, Reason: "Missing/invalid phone"})
			continue
		}
		pairs := PairsText(id)

		var body string
		fallback := false
		switch mode {
		case ModeReminder:
			if id.AssigneeName != "" {
				body = d.ReminderAssociate(ctx, id.CustomerName, pairs, id.AssigneeName, id.VideoURLs)
			} else {
				body = d.Reminder(ctx, id.CustomerName, pairs, id.VideoURLs)
			}
		case ModeManager:
			body = d.ManagerFollowUp(ctx, id.CustomerName, pairs)
		case ModeOldLead:
			body = d.OldLead(ctx, id.CustomerName, id.Vehicles, id.StageHint)
			fallback = true
		}

		if strings.TrimSpace(body) == "" {
			skipped = append(skipped, model.Skipped{Identity: id, Reason: "No message generated"})
			continue
		}
		msgs = append(msgs, model.Message{
			Identity: id,
			Body:     ClipSMS(body, d.maxChars),
			Fallback: fallback,
		})
	}
	return msgs, skipped
}

// PairsText aligns an identity's cars with its relative dates.
func PairsText(id model.Identity) string {
	whens := strings.Split(id.WhenRel, ";")
	var cleaned []string
	for _, w := range whens {
		if v := strings.TrimSpace(w); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	n := len(id.Cars)
	if len(cleaned) > n {
		n = len(cleaned)
	}
	var pairs []string
	for i := 0; i < n; i++ {
		var c, w string
		if i < len(id.Cars) {
			c = id.Cars[i]
		}
		if i < len(cleaned) {
			w = cleaned[i]
		}
		if p := strings.TrimSpace(c + " " + w); p != "" {
			pairs = append(pairs, p)
		}
	}
	return strings.Join(pairs, "; ")
}
