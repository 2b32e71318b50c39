package raft

import "github.com/coreraft/raftcore/raft/codec"

// Dispatch decodes env by its declared type and routes it to the
// matching handler. A malformed envelope (wrong shape, missing/
// undecodable required argument) or one missing its Info stamp is
// dropped silently: Dispatch logs it and returns a zero Result with a
// nil error. A non-nil error here always
// means ErrPersistenceFailure, which the driver should treat as fatal.
func (s *Server) Dispatch(env codec.Envelope) (Result, error) {
	if env.Info == nil {
		s.log.Warn().Str("type", string(env.Type)).Msg("dropping envelope with no info stamp")
		return Result{}, nil
	}
	from := env.Info.From
	id := env.Info.Id

	switch env.Type {
	case codec.AppendEntries:
		args, ok := codec.DecodeAppendEntries(env)
		if !ok {
			s.log.Warn().Int64("from", int64(from)).Msg("dropping malformed AppendEntries")
			return Result{}, nil
		}
		return s.HandleAppendEntries(from, id, args)

	case codec.AppendEntriesResponse:
		args, ok := codec.DecodeAppendEntriesResponse(env)
		if !ok {
			s.log.Warn().Int64("from", int64(from)).Msg("dropping malformed AppendEntriesResponse")
			return Result{}, nil
		}
		return s.HandleAppendEntriesResponse(from, id, args)

	case codec.RequestVote:
		args, ok := codec.DecodeRequestVote(env)
		if !ok {
			s.log.Warn().Int64("from", int64(from)).Msg("dropping malformed RequestVote")
			return Result{}, nil
		}
		return s.HandleRequestVote(from, id, args)

	case codec.RequestVoteResponse:
		args, ok := codec.DecodeRequestVoteResponse(env)
		if !ok {
			s.log.Warn().Int64("from", int64(from)).Msg("dropping malformed RequestVoteResponse")
			return Result{}, nil
		}
		return s.HandleRequestVoteResponse(from, id, args)

	default:
		s.log.Warn().Str("type", string(env.Type)).Msg("dropping envelope of unknown type")
		return Result{}, nil
	}
}
