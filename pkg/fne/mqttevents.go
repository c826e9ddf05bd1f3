package fne

import (
	"time"

	"github.com/k9fne/fned/pkg/mqtt"
	"github.com/k9fne/fned/pkg/peer"
)

func mqttPeerConnectEvent(system string, peerID uint32, _ peer.Config) mqtt.PeerConnectEvent {
	return mqtt.PeerConnectEvent{PeerID: peerID, System: system, Timestamp: time.Now()}
}

func mqttPeerDisconnectEvent(system string, peerID uint32, reason string) mqtt.PeerDisconnectEvent {
	return mqtt.PeerDisconnectEvent{PeerID: peerID, System: system, Reason: reason, Timestamp: time.Now()}
}
