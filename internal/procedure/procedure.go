// Package procedure defines the catalog of timed UE signaling procedures.
//
// The catalog order is fixed. It drives both validation of incoming event
// names and the order in which reports are printed.
package procedure

// Procedure identifies one timed signaling step.
type Procedure int

const (
	SendInitialRegistrationRequest Procedure = iota
	ReceiveAuthenticationRequest
	SendAuthenticationResponse
	ReceiveSecurityModeCommand
	SendSecurityModeComplete
	ReceiveInitialContextSetupRequest
	SendInitialContextSetupResponse
	SendRegistrationComplete
	SendPDUSessionEstablishmentRequest
	ReceivePDUSessionResourceSetupRequest
	SendPDUSessionResourceSetupResponse
	ReceiveConfigurationUpdateCommand
	SendConfigurationUpdateComplete
	SendContextReleaseRequest
	ReceiveContextReleaseCommand
	SendContextReleaseComplete

	// Count is the number of catalog entries.
	Count int = iota
)

// SessionComplete is the last procedure of the session-establishment
// sequence. Its END timestamp closes the overall UE timing window.
const SessionComplete = SendPDUSessionResourceSetupResponse

// names holds the event names as they appear in the log, in catalog order.
var names = [Count]string{
	"sendInitialRegistrationRequest",
	"receiveAuthenticationRequest",
	"sendAuthenticationResponse",
	"receiveSecurityModeCommand",
	"sendSecurityModeComplete",
	"receiveInitialContextSetupRequest(+RegistrationAccept)",
	"sendInitialContextSetupResponse",
	"sendRegistrationComplete",
	"sendPDUSessionEstablishmentRequest",
	"receivePDUSessionResourceSetupRequest(+EstablishmentAccept)",
	"sendPDUSessionResourceSetupResponse",
	"receiveConfigurationUpdateCommand",
	"sendConfigurationUpdateComplete",
	"sendContextReleaseRequest",
	"receiveContextReleaseCommand",
	"sendContextReleaseComplete",
}

var byName = func() map[string]Procedure {
	m := make(map[string]Procedure, Count)
	for i, n := range names {
		m[n] = Procedure(i)
	}
	return m
}()

// String returns the log event name of the procedure.
func (p Procedure) String() string {
	if !p.Valid() {
		return "unknown"
	}
	return names[p]
}

// Valid reports whether p is a catalog member.
func (p Procedure) Valid() bool {
	return p >= 0 && int(p) < Count
}

// Lookup maps a log event name to its procedure.
func Lookup(name string) (Procedure, bool) {
	p, ok := byName[name]
	return p, ok
}

// All returns every procedure in catalog order.
func All() []Procedure {
	all := make([]Procedure, Count)
	for i := range all {
		all[i] = Procedure(i)
	}
	return all
}
