package services

import "dispatch/internal/core/ports"

type nopMetrics struct{}

func (nopMetrics) ClaimAttempted(string)     {}
func (nopMetrics) RejectionAttempted(string) {}
func (nopMetrics) OrderCreated(int)          {}
func (nopMetrics) PendingBacklog(int64)      {}

func metricsOrNop(m ports.DispatchMetrics) ports.DispatchMetrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
