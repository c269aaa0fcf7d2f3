package models

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var jobTransitions = map[string][]string{
	JobScheduled:  {JobInProgress, JobCancelled},
	JobInProgress: {JobCompleted, JobCancelled},
}

var invoiceTransitions = map[string][]string{
	InvoicePending: {InvoiceSent, InvoicePaid, InvoiceOverdue},
	InvoiceSent:    {InvoicePaid, InvoiceOverdue},
	InvoiceOverdue: {InvoicePaid},
}

func IsJobStatus(s string) bool {
	switch s {
	case JobScheduled, JobInProgress, JobCompleted, JobCancelled:
		return true
	}
	return false
}

func IsInvoiceStatus(s string) bool {
	switch s {
	case InvoicePending, InvoiceSent, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

// JobActions lists the statuses a job may move to next. Terminal states
// return nil.
func JobActions(from string) []string {
	return jobTransitions[from]
}

func InvoiceActions(from string) []string {
	return invoiceTransitions[from]
}

func CanTransitionJob(from, to string) bool {
	return contains(jobTransitions[from], to)
}

func CanTransitionInvoice(from, to string) bool {
	return contains(invoiceTransitions[from], to)
}

// CheckJobTransition wraps ErrInvalidTransition with the offending states.
func CheckJobTransition(from, to string) error {
	if !CanTransitionJob(from, to) {
		return fmt.Errorf("%w: job %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func CheckInvoiceTransition(from, to string) error {
	if !CanTransitionInvoice(from, to) {
		return fmt.Errorf("%w: invoice %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
