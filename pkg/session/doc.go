// Package session carries per-browser visitor state in a signed cookie.
//
// The state is encoded as an HS256 JWT signed with the application secret
// key, so it is tamper-evident but not confidential. Nothing is stored on
// the server. A missing, expired, malformed or tampered cookie decodes to
// the zero State.
//
//	codec, err := session.NewCodec(cfg.SecretKey)
//	state := codec.Load(r)
//	state.Name = "Ada"
//	err = codec.Save(w, state)
package session
