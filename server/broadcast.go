package server

// refreshSignal is the single message dashboards receive. Clients react
// by re-fetching the stats endpoint; no state rides on the socket.
const refreshSignal = "refresh"

// broadcastMessage sends a message to all connected clients.
// Returns the number of clients that accepted the message.
func (s *ArenaServer) broadcastMessage(msg string) int {
	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		select {
		case client.send <- msg:
			sent++
		default:
			s.broadcastDrops.Add(1)
			s.removeSlowClient(client)
		}
	}
	return sent
}

// BroadcastRefresh tells every connected dashboard to re-fetch. The
// build pipeline calls this once per resolved submission.
func (s *ArenaServer) BroadcastRefresh() {
	sent := s.broadcastMessage(refreshSignal)
	s.logger.Debugw("Broadcasted refresh", "clients", sent)
}
