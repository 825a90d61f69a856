package utils

import "time"

// DefaultTickInterval is the period of the simulation ticker
const DefaultTickInterval = 2000 * time.Millisecond

// HistoryCapacity is the maximum number of history points kept
const HistoryCapacity = 20

// ActivityCapacity is the maximum number of activity log entries kept
const ActivityCapacity = 50

// ClockLayout formats history and activity timestamps
const ClockLayout = "15:04:05"
