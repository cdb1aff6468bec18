package utils

// EventChannel is the Redis pub/sub channel carrying booking lifecycle events.
const EventChannel = "booking:events"
