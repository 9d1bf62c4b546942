package orchestrator

import "strings"

// objectionRule pairs an objection category with its trigger keywords and the
// canned deflection the persona answers with instead of invoking generation.
type objectionRule struct {
	category   string
	keywords   []string
	deflection string
}

// objectionRules is the fixed classification table. Order matters: the first
// matching category wins.
var objectionRules = []objectionRule{
	{
		category:   "price",
		keywords:   []string{"expensive", "cost", "price", "afford", "cheap", "money"},
		deflection: "I completely understand that budget matters. Many of our participants felt the same way at first, and most tell us the outcome was well worth it. We also offer flexible payment plans. Would it help if I walked you through the options?",
	},
	{
		category:   "time",
		keywords:   []string{"busy", "time", "schedule", "later", "week", "months"},
		deflection: "I hear you, finding the time is the hardest part. The program is designed around busy schedules, with evening and weekend options. What does a typical week look like for you?",
	},
	{
		category:   "experience",
		keywords:   []string{"beginner", "experience", "qualified", "background", "skills", "hard"},
		deflection: "That's a really common concern, and honestly, most people start with no prior background. The curriculum assumes nothing and builds up step by step. What would you like to get out of it?",
	},
}

// classifyObjection matches the utterance against the objection table using
// case-insensitive keyword containment. First match wins.
func classifyObjection(utterance string) (objectionRule, bool) {
	lowered := strings.ToLower(utterance)
	for _, rule := range objectionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule, true
			}
		}
	}
	return objectionRule{}, false
}

// bookingKeywords signal scheduling intent; they feed the booking-attempt
// counter and move the call into the booking state.
var bookingKeywords = []string{"book", "schedule an", "appointment", "enroll", "sign up", "register"}

func hasBookingIntent(utterance string) bool {
	lowered := strings.ToLower(utterance)
	for _, kw := range bookingKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
