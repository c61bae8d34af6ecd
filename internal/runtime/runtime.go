package runtime

// These are the helpers that lowered classes call at run time. Each one is a
// single JavaScript expression. It's stored under the name that generated
// code uses to ask for it and is only emitted into the output file if
// something actually refers to it.

const (
	Inherits             = "inherits"
	ClassCallCheck       = "class-call-check"
	CreateClass          = "create-class"
	CreateDecoratedClass = "create-decorated-class"
	Get                  = "get"
	Set                  = "set"
)

var helperCode = map[string]string{
	Inherits: `function(subClass, superClass) {
  if (typeof superClass !== "function" && superClass !== null) {
    throw new TypeError("Super expression must either be null or a function, not " + typeof superClass);
  }
  subClass.prototype = Object.create(superClass && superClass.prototype, {
    constructor: {
      value: subClass,
      enumerable: false,
      writable: true,
      configurable: true
    }
  });
  if (superClass)
    Object.setPrototypeOf ? Object.setPrototypeOf(subClass, superClass) : subClass.__proto__ = superClass;
}`,

	ClassCallCheck: `function(instance, Constructor) {
  if (!(instance instanceof Constructor)) {
    throw new TypeError("Cannot call a class as a function");
  }
}`,

	CreateClass: `(function() {
  function defineProperties(target, props) {
    for (var i = 0; i < props.length; i++) {
      var descriptor = props[i];
      descriptor.enumerable = descriptor.enumerable || false;
      descriptor.configurable = true;
      if ("value" in descriptor)
        descriptor.writable = true;
      Object.defineProperty(target, descriptor.key, descriptor);
    }
  }
  return function(Constructor, protoProps, staticProps) {
    if (protoProps)
      defineProperties(Constructor.prototype, protoProps);
    if (staticProps)
      defineProperties(Constructor, staticProps);
    return Constructor;
  };
})()`,

	// Decorators get to replace the descriptor of the member they are attached
	// to. Descriptors that end up with an initializer are handed back through
	// the initializers object so the constructor can run them per instance.
	CreateDecoratedClass: `(function() {
  function defineProperties(target, descriptors, initializers) {
    for (var i = 0; i < descriptors.length; i++) {
      var descriptor = descriptors[i];
      var decorators = descriptor.decorators;
      var key = descriptor.key;
      delete descriptor.key;
      delete descriptor.decorators;
      descriptor.enumerable = descriptor.enumerable || false;
      descriptor.configurable = true;
      if ("value" in descriptor || descriptor.initializer)
        descriptor.writable = true;
      if (decorators) {
        for (var f = 0; f < decorators.length; f++) {
          var decorator = decorators[f];
          if (typeof decorator === "function") {
            descriptor = decorator(target, key, descriptor) || descriptor;
          } else {
            throw new TypeError("The decorator for method " + key + " is of the invalid type " + typeof decorator);
          }
        }
      }
      if (descriptor.initializer !== void 0) {
        initializers[key] = descriptor.initializer;
        continue;
      }
      Object.defineProperty(target, key, descriptor);
    }
  }
  return function(Constructor, protoProps, staticProps, protoInitializers, staticInitializers) {
    if (protoProps)
      defineProperties(Constructor.prototype, protoProps, protoInitializers);
    if (staticProps)
      defineProperties(Constructor, staticProps, staticInitializers);
    return Constructor;
  };
})()`,

	Get: `function(object, property, receiver) {
  for (; object !== null; object = Object.getPrototypeOf(object)) {
    var desc = Object.getOwnPropertyDescriptor(object, property);
    if (desc === void 0)
      continue;
    if ("value" in desc)
      return desc.value;
    var getter = desc.get;
    return getter === void 0 ? void 0 : getter.call(receiver);
  }
  return void 0;
}`,

	Set: `function(object, property, value, receiver) {
  for (; object !== null; object = Object.getPrototypeOf(object)) {
    var desc = Object.getOwnPropertyDescriptor(object, property);
    if (desc === void 0)
      continue;
    if ("value" in desc) {
      if (desc.writable)
        break;
      return value;
    }
    var setter = desc.set;
    if (setter !== void 0)
      setter.call(receiver, value);
    return value;
  }
  Object.defineProperty(receiver, property, {
    value: value,
    enumerable: true,
    writable: true,
    configurable: true
  });
  return value;
}`,
}

// Returns the names of all helpers in a stable order
func HelperNames() []string {
	return []string{Inherits, ClassCallCheck, CreateClass, CreateDecoratedClass, Get, Set}
}

func HelperCode(name string) (string, bool) {
	code, ok := helperCode[name]
	return code, ok
}
