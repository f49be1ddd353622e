package loader

import "weaver/pkg/apperror"

func unsupportedSchemeError(scheme string) error {
	return apperror.New(apperror.CodeInvalidArgument, "unsupported virtual path scheme: "+scheme)
}
