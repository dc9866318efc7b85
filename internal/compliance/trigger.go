package compliance

// TriggerEvent names a case-lifecycle occurrence that activates rule
// evaluation. Values are the exact strings stored in the rules.triggers
// JSONB array, so selection is a plain string comparison.
type TriggerEvent string

// The full lifecycle event catalog.
const (
	TriggerCaseFiled                     TriggerEvent = "case_filed"
	TriggerMotionFiled                   TriggerEvent = "motion_filed"
	TriggerOrderIssued                   TriggerEvent = "order_issued"
	TriggerDocumentFiled                 TriggerEvent = "document_filed"
	TriggerStatusChanged                 TriggerEvent = "status_changed"
	TriggerDeadlineApproaching           TriggerEvent = "deadline_approaching"
	TriggerPleaEntered                   TriggerEvent = "plea_entered"
	TriggerSentencingScheduled           TriggerEvent = "sentencing_scheduled"
	TriggerCaseAssigned                  TriggerEvent = "case_assigned"
	TriggerCaseReassigned                TriggerEvent = "case_reassigned"
	TriggerAppearanceFiled               TriggerEvent = "appearance_filed"
	TriggerExtensionRequested            TriggerEvent = "extension_requested"
	TriggerManualEvaluation              TriggerEvent = "manual_evaluation"
	TriggerComplaintFiled                TriggerEvent = "complaint_filed"
	TriggerServiceComplete               TriggerEvent = "service_complete"
	TriggerDocumentServed                TriggerEvent = "document_served"
	TriggerAmendedPleadingFiled          TriggerEvent = "amended_pleading_filed"
	TriggerLeaveToAmendGranted           TriggerEvent = "leave_to_amend_granted"
	TriggerSummaryJudgmentFiled          TriggerEvent = "summary_judgment_filed"
	TriggerSummaryJudgmentResponseFiled  TriggerEvent = "summary_judgment_response_filed"
	TriggerJudgmentEntered               TriggerEvent = "judgment_entered"
	TriggerMagistrateRecommendationFiled TriggerEvent = "magistrate_recommendation_filed"
	TriggerProHacViceFiled               TriggerEvent = "pro_hac_vice_filed"
	TriggerClassActionFiled              TriggerEvent = "class_action_filed"
	TriggerDiscoveryRequestServed        TriggerEvent = "discovery_request_served"
	TriggerDiscoveryResponseFiled        TriggerEvent = "discovery_response_filed"
	TriggerProposedOrderSubmitted        TriggerEvent = "proposed_order_submitted"
	TriggerDocumentUploaded              TriggerEvent = "document_uploaded"
	TriggerSettlementReached             TriggerEvent = "settlement_reached"
	TriggerWaiverOfServiceRequested      TriggerEvent = "waiver_of_service_requested"
	TriggerWaiverOfServiceAccepted       TriggerEvent = "waiver_of_service_accepted"
	TriggerAnswerFiled                   TriggerEvent = "answer_filed"
	TriggerMotionDenied                  TriggerEvent = "motion_denied"
	TriggerThirdPartyComplaintFiled      TriggerEvent = "third_party_complaint_filed"
	TriggerRule26fConferenceHeld         TriggerEvent = "rule26f_conference_held"
	TriggerPartyJoined                   TriggerEvent = "party_joined"
	TriggerTrialDateSet                  TriggerEvent = "trial_date_set"
	TriggerDepositionNoticed             TriggerEvent = "deposition_noticed"
	TriggerStatementOfDeathFiled         TriggerEvent = "statement_of_death_filed"
	TriggerDefendantAppeared             TriggerEvent = "defendant_appeared"
	TriggerTroEntered                    TriggerEvent = "tro_entered"
	TriggerOfferOfJudgmentServed         TriggerEvent = "offer_of_judgment_served"
	TriggerMagistrateOrderEntered        TriggerEvent = "magistrate_order_entered"
	TriggerAnswerDeadlinePassed          TriggerEvent = "answer_deadline_passed"
	TriggerDiscoveryClosed               TriggerEvent = "discovery_closed"
	TriggerResponseFiled                 TriggerEvent = "response_filed"
	TriggerLastPleadingServed            TriggerEvent = "last_pleading_served"
	TriggerNoActivity                    TriggerEvent = "no_activity"
)

var knownTriggers = func() map[TriggerEvent]struct{} {
	all := []TriggerEvent{
		TriggerCaseFiled, TriggerMotionFiled, TriggerOrderIssued,
		TriggerDocumentFiled, TriggerStatusChanged, TriggerDeadlineApproaching,
		TriggerPleaEntered, TriggerSentencingScheduled, TriggerCaseAssigned,
		TriggerCaseReassigned, TriggerAppearanceFiled, TriggerExtensionRequested,
		TriggerManualEvaluation, TriggerComplaintFiled, TriggerServiceComplete,
		TriggerDocumentServed, TriggerAmendedPleadingFiled, TriggerLeaveToAmendGranted,
		TriggerSummaryJudgmentFiled, TriggerSummaryJudgmentResponseFiled,
		TriggerJudgmentEntered, TriggerMagistrateRecommendationFiled,
		TriggerProHacViceFiled, TriggerClassActionFiled, TriggerDiscoveryRequestServed,
		TriggerDiscoveryResponseFiled, TriggerProposedOrderSubmitted,
		TriggerDocumentUploaded, TriggerSettlementReached,
		TriggerWaiverOfServiceRequested, TriggerWaiverOfServiceAccepted,
		TriggerAnswerFiled, TriggerMotionDenied, TriggerThirdPartyComplaintFiled,
		TriggerRule26fConferenceHeld, TriggerPartyJoined, TriggerTrialDateSet,
		TriggerDepositionNoticed, TriggerStatementOfDeathFiled,
		TriggerDefendantAppeared, TriggerTroEntered, TriggerOfferOfJudgmentServed,
		TriggerMagistrateOrderEntered, TriggerAnswerDeadlinePassed,
		TriggerDiscoveryClosed, TriggerResponseFiled, TriggerLastPleadingServed,
		TriggerNoActivity,
	}
	m := make(map[TriggerEvent]struct{}, len(all))
	for _, t := range all {
		m[t] = struct{}{}
	}
	return m
}()

// ParseTrigger maps a raw string onto the event catalog. The second return
// value is false for strings that are not known lifecycle events.
func ParseTrigger(s string) (TriggerEvent, bool) {
	t := TriggerEvent(s)
	_, ok := knownTriggers[t]
	return t, ok
}

// String returns the serialized trigger name.
func (t TriggerEvent) String() string { return string(t) }
