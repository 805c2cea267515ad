package smsutils

import "errors"

// replies are the fixed SMS texts sent back for each intent or error kind.
var replies = map[string]string{
	string(KindRideRequest):    "We found both addresses. Reply YES to request your ride or NO to start over.",
	string(KindYes):            "Your ride has been requested. We will text you when it is on the way.",
	string(KindNo):             "Okay, nothing was booked. Send a new ride request whenever you are ready.",
	string(KindCancel):         "Your ride request was cancelled.",
	string(KindUnknown):        "Sorry, we did not understand. Text: new ride from: <address>; to: <address>",
	string(ZeroResults):        "We could not find one of those addresses. Please check it and try again.",
	string(ServiceUnavailable): "Our address lookup is unavailable right now. Please try again in a few minutes.",
}

// Reply returns the reply text for an intent kind or error kind.
func Reply(replyType string) (string, bool) {
	text, ok := replies[replyType]
	return text, ok
}

// ReplyTypeOf returns the reply type for a classification outcome.
func ReplyTypeOf(intent *Intent, err error) string {
	var classErr *ClassificationError
	if errors.As(err, &classErr) {
		return string(classErr.Kind)
	}
	if err != nil {
		return string(ServiceUnavailable)
	}
	if intent == nil {
		return string(KindUnknown)
	}
	return string(intent.Kind)
}
