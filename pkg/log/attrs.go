package log

import "log/slog"

func RunID[T ~string](id T) slog.Attr {
	return slog.String("run_id", string(id))
}

func FlowID[T ~string](id T) slog.Attr {
	return slog.String("flow_id", string(id))
}

func RequestID[T ~string](id T) slog.Attr {
	return slog.String("request_id", string(id))
}

func EnvironmentID[T ~string](id T) slog.Attr {
	return slog.String("environment_id", string(id))
}

func CollectionID[T ~string](id T) slog.Attr {
	return slog.String("collection_id", string(id))
}

func Kind[T ~string](kind T) slog.Attr {
	return slog.String("kind", string(kind))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func URL(url string) slog.Attr {
	return slog.String("url", url)
}

func Variable(name string) slog.Attr {
	return slog.String("variable", name)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
