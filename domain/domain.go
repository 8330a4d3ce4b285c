package domain

// Connection is a live client transport as seen by the coordinator.
type Connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

// Router fans events out to room members or to every attached connection.
type Router interface {
	Attach(conn Connection)
	Detach(conn Connection)
	Join(conn Connection, room RoomKey)
	Leave(conn Connection, room RoomKey)
	Broadcast(room RoomKey, event string, payload any) error
	BroadcastGlobal(event string, payload any) error
	Stats() (rooms, clients int)
}

// Handler consumes inbound frames and lifecycle notifications of a connection.
type Handler interface {
	Connect(conn Connection)
	Handle(conn Connection, data []byte)
	Disconnect(conn Connection)
}
