package xpt

import "errors"

var (
	ErrNoLibraryHeader     = errors.New("missing LIBRARY header record")
	ErrNoMemberHeader      = errors.New("missing MEMBER header record")
	ErrNoDescriptorHeader  = errors.New("missing DSCRPTR header record")
	ErrNoNamestrHeader     = errors.New("missing NAMESTR header record")
	ErrNoObservationHeader = errors.New("missing OBS header record")
	ErrHeadersNotRead      = errors.New("file headers not read")
)
